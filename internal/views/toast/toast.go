// Package toast shows short-lived notifications in the corner of the screen.
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/theme"
)

// Lifetime is how long a toast stays on screen.
const Lifetime = 3 * time.Second

const maxVisible = 4

// Kind selects the toast color.
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "ok"
	case Error:
		return "err"
	default:
		return "info"
	}
}

// ShowMsg asks the root model to display a toast.
type ShowMsg struct {
	Kind Kind
	Text string
}

// ExpireMsg removes the toast with ID.
type ExpireMsg struct{ ID int }

// Show returns a command that displays a toast.
func Show(kind Kind, text string) tea.Cmd {
	return func() tea.Msg { return ShowMsg{Kind: kind, Text: text} }
}

// Successf, Errorf and Infof are shorthands for Show.
func Successf(text string) tea.Cmd { return Show(Success, text) }
func Errorf(text string) tea.Cmd   { return Show(Error, text) }
func Infof(text string) tea.Cmd    { return Show(Info, text) }

type item struct {
	id   int
	kind Kind
	text string
}

// Model is the toast stack, newest last.
type Model struct {
	items  []item
	nextID int
}

func New() Model { return Model{} }

// Push adds a toast and schedules its expiry.
func (m *Model) Push(kind Kind, text string) tea.Cmd {
	m.nextID++
	id := m.nextID
	m.items = append(m.items, item{id: id, kind: kind, text: text})
	if len(m.items) > maxVisible {
		m.items = m.items[len(m.items)-maxVisible:]
	}
	return tea.Tick(Lifetime, func(time.Time) tea.Msg { return ExpireMsg{ID: id} })
}

// Expire drops the toast with id, if still shown.
func (m *Model) Expire(id int) {
	for i, it := range m.items {
		if it.id == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

// Len returns the number of visible toasts.
func (m Model) Len() int { return len(m.items) }

func (m Model) View() string {
	if len(m.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.items))
	for _, it := range m.items {
		lines = append(lines, style(it.kind).Render(it.text))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}

func style(k Kind) lipgloss.Style {
	color := theme.ColorInfo
	switch k {
	case Success:
		color = theme.ColorSuccess
	case Error:
		color = theme.ColorDanger
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(theme.ColorBright).
		Background(color)
}
