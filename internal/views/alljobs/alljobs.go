// Package alljobs lists every posted job in a sortable table.
package alljobs

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/theme"
)

// Lister fetches the job list.
type Lister interface {
	ListJobs(ctx context.Context, sort api.SortOrder) ([]api.Job, error)
}

// JobsLoadedMsg is returned after fetching /jobs.
type JobsLoadedMsg struct {
	Sort api.SortOrder
	Jobs []api.Job
	Err  error
}

// KeyMap holds the page's key bindings.
type KeyMap struct {
	Open    key.Binding
	Sort    key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view details"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by deadline"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model is the All Jobs page.
type Model struct {
	ctx    context.Context
	jobs   Lister
	keys   KeyMap
	table  table.Model
	list   []api.Job
	sort   api.SortOrder
	loaded bool
	err    error

	width  int
	height int
}

func New(ctx context.Context, jobs Lister) Model {
	return Model{
		ctx:   ctx,
		jobs:  jobs,
		keys:  DefaultKeyMap(),
		table: newTable(),
	}
}

func newTable() table.Model {
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
	return t
}

func columns(width int) []table.Column {
	title := width - 14 - 20 - 18 - 12 - 10
	if title < 16 {
		title = 16
	}
	return []table.Column{
		{Title: "Title", Width: title},
		{Title: "Posted By", Width: 14},
		{Title: "Category", Width: 20},
		{Title: "Budget", Width: 18},
		{Title: "Deadline", Width: 12},
	}
}

func (m Model) Init() tea.Cmd {
	return fetch(m.ctx, m.jobs, m.sort)
}

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	if h := height - 6; h > 3 {
		m.table.SetHeight(h)
	}
}

// Sort returns the current ordering.
func (m Model) Sort() api.SortOrder { return m.sort }

// Jobs returns the loaded jobs in display order.
func (m Model) Jobs() []api.Job { return m.list }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case JobsLoadedMsg:
		if msg.Sort != m.sort {
			return m, nil // superseded by a newer sort
		}
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.list = msg.Jobs
			m.table.SetRows(rows(msg.Jobs))
			m.table.SetCursor(0)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Sort):
			m.sort = m.sort.Next()
			m.loaded = false
			return m, fetch(m.ctx, m.jobs, m.sort)
		case key.Matches(msg, m.keys.Refresh):
			m.loaded = false
			return m, fetch(m.ctx, m.jobs, m.sort)
		case key.Matches(msg, m.keys.Open):
			if job, ok := m.selected(); ok {
				return m, router.Navigate(router.JobPath(job.ID))
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

func (m Model) View() string {
	title := theme.StyleTitle.Render(fmt.Sprintf("All Jobs (%d)", len(m.list)))
	sortLabel := theme.StyleDimmed.Render("sort: " + m.sort.String())
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", sortLabel)

	var body string
	switch {
	case m.err != nil:
		body = theme.StyleError.Render("Could not load jobs: " + m.err.Error())
	case !m.loaded:
		body = theme.StyleDimmed.Render("Loading jobs...")
	case len(m.list) == 0:
		body = theme.StyleDimmed.Render("No jobs posted yet.")
	default:
		body = m.table.View()
	}

	help := theme.StyleDimmed.Render("j/k:move  enter:details  s:sort (default → asc → desc)  r:refresh")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", help)
}

func rows(jobs []api.Job) []table.Row {
	out := make([]table.Row, len(jobs))
	for i, j := range jobs {
		out[i] = table.Row{
			j.JobTitle,
			j.PostedBy,
			j.JobCategory,
			theme.PriceRange(j.MinPrice, j.MaxPrice),
			j.Deadline,
		}
	}
	return out
}

func fetch(ctx context.Context, jobs Lister, sort api.SortOrder) tea.Cmd {
	return func() tea.Msg {
		list, err := jobs.ListJobs(ctx, sort)
		return JobsLoadedMsg{Sort: sort, Jobs: list, Err: err}
	}
}
