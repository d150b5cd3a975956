// Package mytasks lists the tasks the signed-in user accepted.
package mytasks

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
	AcceptedTasksByTaker(ctx context.Context, email string) ([]api.AcceptedTask, error)
	DeleteAcceptedTask(ctx context.Context, id string) (*api.DeleteResult, error)
}

// Action is what the taker does with a task. Both remove it.
type Action int

const (
	Done Action = iota
	Cancel
)

func (a Action) verb() string {
	if a == Done {
		return "mark as DONE"
	}
	return "CANCEL"
}

func (a Action) past() string {
	if a == Done {
		return "completed"
	}
	return "cancelled"
}

type TasksLoadedMsg struct {
	Email string
	Tasks []api.AcceptedTask
	Err   error
}

type ActionResultMsg struct {
	Task   api.AcceptedTask
	Action Action
	Result *api.DeleteResult
	Err    error
}

type pending struct {
	task   api.AcceptedTask
	action Action
}

type KeyMap struct {
	Open    key.Binding
	Done    key.Binding
	Cancel  key.Binding
	Browse  key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "job details"),
		),
		Done: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "done"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel"),
		),
		Browse: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "browse jobs"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model is the My Accepted Tasks page.
type Model struct {
	ctx     context.Context
	client  Client
	email   string
	keys    KeyMap
	table   table.Model
	list    []api.AcceptedTask
	confirm confirm.Model[pending]
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
		confirm: confirm.New[pending](),
	}
}

func columns(width int) []table.Column {
	title := max(width-20-24-10-12-5, 16)
	return []table.Column{
		{Title: "Task", Width: title},
		{Title: "Category", Width: 20},
		{Title: "Employer", Width: 24},
		{Title: "Status", Width: 10},
		{Title: "Accepted", Width: 12},
	}
}

func (m Model) Init() tea.Cmd { return m.fetch() }

func (m *Model) SetSize(width, height int) {
	m.table.SetColumns(columns(width))
	if h := height - 8; h > 3 {
		m.table.SetHeight(h)
	}
}

// Capturing reports whether the action prompt owns the keyboard.
func (m Model) Capturing() bool { return m.confirm.Open() }

// Tasks returns the loaded tasks.
func (m Model) Tasks() []api.AcceptedTask { return m.list }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Email != m.email {
			return m, nil
		}
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.list = msg.Tasks
			m.table.SetRows(rows(msg.Tasks))
			if m.table.Cursor() >= len(msg.Tasks) {
				m.table.SetCursor(max(len(msg.Tasks)-1, 0))
			}
		}
		return m, nil

	case ActionResultMsg:
		switch {
		case msg.Err != nil:
			log.Printf("mytasks: %s %s: %v", msg.Action.verb(), msg.Task.ID, msg.Err)
			return m, toast.Errorf("An error occurred during task action.")
		case msg.Result.DeletedCount > 0:
			return m, tea.Batch(
				toast.Successf(fmt.Sprintf("Task %q %s successfully!", msg.Task.JobTitle, msg.Action.past())),
				m.fetch(),
			)
		default:
			return m, toast.Errorf(fmt.Sprintf("Failed to %s the task.", msg.Action.verb()))
		}

	case tea.KeyMsg:
		if m.confirm.Open() {
			var answer confirm.Answer
			m.confirm, answer = m.confirm.Update(msg)
			if answer == confirm.Yes {
				p := m.confirm.Value()
				return m, m.act(p.task, p.action)
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetch()
		case key.Matches(msg, m.keys.Browse):
			return m, router.Navigate(router.PathAllJobs)
		case key.Matches(msg, m.keys.Open):
			if task, ok := m.selected(); ok {
				return m, router.Navigate(router.JobPath(task.JobID))
			}
			return m, nil
		case key.Matches(msg, m.keys.Done):
			m.ask(Done)
			return m, nil
		case key.Matches(msg, m.keys.Cancel):
			m.ask(Cancel)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) ask(a Action) {
	task, ok := m.selected()
	if !ok {
		return
	}
	prompt := fmt.Sprintf("Are you sure you want to %s the task: %q?", a.verb(), task.JobTitle)
	m.confirm.Ask(prompt, pending{task: task, action: a})
}

func (m Model) selected() (api.AcceptedTask, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.list) {
		return api.AcceptedTask{}, false
	}
	return m.list[i], true
}

func (m Model) fetch() tea.Cmd {
	ctx, client, email := m.ctx, m.client, m.email
	return func() tea.Msg {
		tasks, err := client.AcceptedTasksByTaker(ctx, email)
		return TasksLoadedMsg{Email: email, Tasks: tasks, Err: err}
	}
}

func (m Model) act(task api.AcceptedTask, a Action) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		res, err := client.DeleteAcceptedTask(ctx, task.ID)
		return ActionResultMsg{Task: task, Action: a, Result: res, Err: err}
	}
}

func (m Model) View() string {
	header := theme.StyleTitle.Render(fmt.Sprintf("My Accepted Tasks (%d)", len(m.list)))

	var body string
	switch {
	case m.err != nil:
		body = theme.StyleError.Render("Failed to load your accepted tasks.")
	case !m.loaded:
		body = theme.StyleDimmed.Render("Loading tasks...")
	case len(m.list) == 0:
		body = lipgloss.JoinVertical(lipgloss.Left,
			"You haven't accepted any tasks yet.",
			theme.StyleDimmed.Render("press b to browse all jobs"),
		)
	default:
		body = m.table.View()
	}

	parts := []string{header, "", body}
	if m.confirm.Open() {
		parts = append(parts, "", m.confirm.View())
	}
	parts = append(parts, "", theme.StyleDimmed.Render("enter:job  d:done  c:cancel  b:browse  r:refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func rows(tasks []api.AcceptedTask) []table.Row {
	out := make([]table.Row, len(tasks))
	for i, t := range tasks {
		accepted := t.AcceptanceDate
		if len(accepted) > 10 {
			accepted = accepted[:10]
		}
		out[i] = table.Row{
			t.JobTitle,
			t.JobCategory,
			t.EmployerEmail,
			t.Status,
			accepted,
		}
	}
	return out
}
