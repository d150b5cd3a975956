// Package myjobs lists the jobs the signed-in user posted.
package myjobs

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/theme"
	"github.com/freelance-hub/jobhub/internal/views/confirm"
	"github.com/freelance-hub/jobhub/internal/views/toast"
)

type Client interface {
	JobsByEmployer(ctx context.Context, email string) ([]api.Job, error)
	DeleteJob(ctx context.Context, id string) (*api.DeleteResult, error)
}

type JobsLoadedMsg struct {
	Email string
	Jobs  []api.Job
	Err   error
}

type DeletedMsg struct {
	Job    api.Job
	Result *api.DeleteResult
	Err    error
}

type KeyMap struct {
	Open    key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Add     key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "update"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "post a job"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model is the My Posted Jobs page.
type Model struct {
	ctx     context.Context
	client  Client
	email   string
	keys    KeyMap
	table   table.Model
	list    []api.Job
	confirm confirm.Model[api.Job]
	loaded  bool
	err     error
}

func New(ctx context.Context, client Client, email string) Model {
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.ColorBright).
		Background(theme.ColorPrimary).
		Bold(false)
	t.SetStyles(s)

	return Model{
		ctx:     ctx,
		client:  client,
		email:   email,
		keys:    DefaultKeyMap(),
		table:   t,
		confirm: confirm.New[api.Job](),
	}
}

func columns(width int) []table.Column {
	title := max(width-20-18-12-4, 16)
	return []table.Column{
		{Title: "Title", Width: title},
		{Title: "Category", Width: 20},
		{Title: "Budget", Width: 18},
		{Title: "Deadline", Width: 12},
	}
}

func (m Model) Init() tea.Cmd { return m.fetch() }

func (m *Model) SetSize(width, height int) {
	m.table.SetColumns(columns(width))
	if h := height - 8; h > 3 {
		m.table.SetHeight(h)
	}
}

// Capturing reports whether the delete prompt owns the keyboard.
func (m Model) Capturing() bool { return m.confirm.Open() }

// Jobs returns the loaded jobs.
func (m Model) Jobs() []api.Job { return m.list }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case JobsLoadedMsg:
		if msg.Email != m.email {
			return m, nil
		}
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.list = msg.Jobs
			m.table.SetRows(rows(msg.Jobs))
			if m.table.Cursor() >= len(msg.Jobs) {
				m.table.SetCursor(max(len(msg.Jobs)-1, 0))
			}
		}
		return m, nil

	case DeletedMsg:
		switch {
		case msg.Err != nil:
			log.Printf("myjobs: delete %s: %v", msg.Job.ID, msg.Err)
			return m, toast.Errorf("An error occurred during deletion.")
		case msg.Result.DeletedCount > 0:
			return m, tea.Batch(
				toast.Successf(fmt.Sprintf("Job %q deleted successfully!", msg.Job.JobTitle)),
				m.fetch(),
			)
		default:
			return m, toast.Errorf("Failed to delete job.")
		}

	case tea.KeyMsg:
		if m.confirm.Open() {
			var answer confirm.Answer
			m.confirm, answer = m.confirm.Update(msg)
			if answer == confirm.Yes {
				return m, m.delete(m.confirm.Value())
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetch()
		case key.Matches(msg, m.keys.Add):
			return m, router.Navigate(router.PathAddJob)
		case key.Matches(msg, m.keys.Open):
			if job, ok := m.selected(); ok {
				return m, router.Navigate(router.JobPath(job.ID))
			}
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			if job, ok := m.selected(); ok {
				return m, router.Navigate(router.UpdateJobPath(job.ID))
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if job, ok := m.selected(); ok {
				m.confirm.Ask(fmt.Sprintf("Are you sure you want to delete the job: %q?", job.JobTitle), job)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) selected() (api.Job, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.list) {
		return api.Job{}, false
	}
	return m.list[i], true
}

func (m Model) fetch() tea.Cmd {
	ctx, client, email := m.ctx, m.client, m.email
	return func() tea.Msg {
		jobs, err := client.JobsByEmployer(ctx, email)
		return JobsLoadedMsg{Email: email, Jobs: jobs, Err: err}
	}
}

func (m Model) delete(job api.Job) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		res, err := client.DeleteJob(ctx, job.ID)
		return DeletedMsg{Job: job, Result: res, Err: err}
	}
}

func (m Model) View() string {
	header := theme.StyleTitle.Render(fmt.Sprintf("My Posted Jobs (%d)", len(m.list)))

	var body string
	switch {
	case m.err != nil:
		body = theme.StyleError.Render("Failed to load your posted jobs.")
	case !m.loaded:
		body = theme.StyleDimmed.Render("Loading jobs...")
	case len(m.list) == 0:
		body = lipgloss.JoinVertical(lipgloss.Left,
			"You haven't posted any jobs yet.",
			theme.StyleDimmed.Render("press a to post your first job"),
		)
	default:
		body = m.table.View()
	}

	parts := []string{header, "", body}
	if m.confirm.Open() {
		parts = append(parts, "", m.confirm.View())
	}
	parts = append(parts, "", theme.StyleDimmed.Render("enter:details  e:update  x:delete  a:add  r:refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func rows(jobs []api.Job) []table.Row {
	out := make([]table.Row, len(jobs))
	for i, j := range jobs {
		out[i] = table.Row{
			j.JobTitle,
			j.JobCategory,
			theme.PriceRange(j.MinPrice, j.MaxPrice),
			j.Deadline,
		}
	}
	return out
}
