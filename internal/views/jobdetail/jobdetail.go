// Package jobdetail shows one job and lets a signed-in user accept it.
package jobdetail

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/session"
	"github.com/freelance-hub/jobhub/internal/theme"
	"github.com/freelance-hub/jobhub/internal/views/toast"
)

// Client is the slice of the job API this page uses.
type Client interface {
	GetJob(ctx context.Context, id string) (*api.Job, error)
	AcceptTask(ctx context.Context, task api.AcceptedTask) (*api.InsertResult, error)
}

// JobLoadedMsg is returned after fetching /job/{id}.
type JobLoadedMsg struct {
	ID  string
	Job *api.Job
	Err error
}

// AcceptResultMsg is returned after POST /accepted-tasks.
type AcceptResultMsg struct {
	JobID  string
	Result *api.InsertResult
	Err    error
}

type KeyMap struct {
	Accept  key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept this task"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// Model is the Job Details page.
type Model struct {
	ctx    context.Context
	client Client
	keys   KeyMap
	id     string
	viewer session.UserIdentity
	now    func() time.Time

	job       *api.Job
	err       error
	accepting bool

	viewport viewport.Model
	width    int
	height   int
}

func New(ctx context.Context, client Client, id string, viewer session.UserIdentity) Model {
	return Model{
		ctx:      ctx,
		client:   client,
		keys:     DefaultKeyMap(),
		id:       id,
		viewer:   viewer,
		now:      time.Now,
		viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return fetch(m.ctx, m.client, m.id)
}

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-4, 5)
	m.render()
}

// IsEmployer reports whether the viewer posted this job.
func (m Model) IsEmployer() bool {
	return m.job != nil && m.job.EmployerEmail == m.viewer.Email
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case JobLoadedMsg:
		if msg.ID != m.id {
			return m, nil
		}
		m.err = msg.Err
		if msg.Err == nil && (msg.Job == nil || msg.Job.JobTitle == "") {
			m.err = fmt.Errorf("job %s not found", msg.ID)
		}
		if m.err == nil {
			m.job = msg.Job
			m.render()
		}
		return m, nil

	case AcceptResultMsg:
		if msg.JobID != m.id {
			return m, nil
		}
		m.accepting = false
		switch {
		case msg.Err != nil:
			log.Printf("jobdetail: accept %s: %v", m.id, msg.Err)
			return m, toast.Errorf("Failed to accept task. Ensure you are logged in.")
		case msg.Result.Inserted():
			return m, tea.Batch(
				toast.Successf(`Task accepted successfully! Check "My Accepted Tasks".`),
				router.Navigate(router.PathMyTasks),
			)
		case msg.Result.AlreadyAccepted():
			return m, toast.Errorf("You have already accepted this task.")
		default:
			return m, toast.Errorf("Failed to accept the task. Please try again.")
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Accept):
			return m.accept()
		case key.Matches(msg, m.keys.Refresh):
			return m, fetch(m.ctx, m.client, m.id)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) accept() (Model, tea.Cmd) {
	if m.job == nil || m.accepting {
		return m, nil
	}
	if m.IsEmployer() {
		return m, toast.Errorf("You cannot accept your own posted job.")
	}
	m.accepting = true
	task := api.AcceptedTask{
		JobID:          m.id,
		JobTitle:       m.job.JobTitle,
		JobCategory:    m.job.JobCategory,
		EmployerEmail:  m.job.EmployerEmail,
		JobTakerEmail:  m.viewer.Email,
		JobTakerName:   m.viewer.DisplayName,
		Status:         api.TaskPending,
		AcceptanceDate: m.now().UTC().Format(time.RFC3339),
	}
	client, ctx, id := m.client, m.ctx, m.id
	return m, func() tea.Msg {
		res, err := client.AcceptTask(ctx, task)
		return AcceptResultMsg{JobID: id, Result: res, Err: err}
	}
}

// render refreshes the viewport content from the job.
func (m *Model) render() {
	if m.job == nil {
		return
	}
	md := markdown(*m.job)
	out, err := renderMarkdown(md, m.viewport.Width)
	if err != nil {
		log.Printf("jobdetail: render markdown: %v", err)
		out = md
	}
	m.viewport.SetContent(out)
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func markdown(j api.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", j.JobTitle)
	fmt.Fprintf(&b, "- **Category:** %s\n", j.JobCategory)
	fmt.Fprintf(&b, "- **Budget:** %s\n", theme.PriceRange(j.MinPrice, j.MaxPrice))
	fmt.Fprintf(&b, "- **Deadline:** %s\n", formatDate(j.Deadline))
	fmt.Fprintf(&b, "- **Posted by:** %s (%s)\n", j.PostedBy, j.EmployerEmail)
	if j.PostingDate != "" {
		fmt.Fprintf(&b, "- **Posted on:** %s\n", formatDate(j.PostingDate))
	}
	if j.CoverImage != "" {
		fmt.Fprintf(&b, "- **Cover:** %s\n", j.CoverImage)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(j.Description)
	b.WriteString("\n")
	return b.String()
}

// formatDate renders ISO timestamps and plain dates as "January 2, 2006".
func formatDate(s string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, api.DeadlineLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return s
}

func (m Model) View() string {
	switch {
	case m.err != nil:
		return theme.StyleError.Render("Job not found or an error occurred: " + m.err.Error())
	case m.job == nil:
		return theme.StyleDimmed.Render("Loading job...")
	}

	var action string
	switch {
	case m.IsEmployer():
		action = theme.Button("Cannot Accept Your Own Job", false)
	case m.accepting:
		action = theme.Button("Accepting...", false)
	default:
		action = theme.Button("a  Accept This Task", true)
	}
	help := theme.StyleDimmed.Render("j/k:scroll  a:accept  r:reload  esc:back")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), "", action, help)
}

func fetch(ctx context.Context, client Client, id string) tea.Cmd {
	return func() tea.Msg {
		job, err := client.GetJob(ctx, id)
		return JobLoadedMsg{ID: id, Job: job, Err: err}
	}
}
