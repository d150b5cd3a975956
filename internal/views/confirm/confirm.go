// Package confirm is an inline yes/no prompt holding the value it asks about.
package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/theme"
)

// Answer is the outcome of feeding a key to an open prompt.
type Answer int

const (
	Pending Answer = iota
	Yes
	No
)

type KeyMap struct {
	Yes key.Binding
	No  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "no"),
		),
	}
}

// Model asks one question about a value of type T.
type Model[T any] struct {
	keys   KeyMap
	prompt string
	value  T
	open   bool
}

func New[T any]() Model[T] {
	return Model[T]{keys: DefaultKeyMap()}
}

// Ask opens the prompt for v.
func (m *Model[T]) Ask(prompt string, v T) {
	m.prompt = prompt
	m.value = v
	m.open = true
}

// Open reports whether the prompt is waiting for an answer.
func (m Model[T]) Open() bool { return m.open }

// Value returns the value the prompt was opened for.
func (m Model[T]) Value() T { return m.value }

// Update consumes key presses while open. Other keys are swallowed.
func (m Model[T]) Update(msg tea.Msg) (Model[T], Answer) {
	k, ok := msg.(tea.KeyMsg)
	if !m.open || !ok {
		return m, Pending
	}
	switch {
	case key.Matches(k, m.keys.Yes):
		m.open = false
		return m, Yes
	case key.Matches(k, m.keys.No):
		m.open = false
		return m, No
	}
	return m, Pending
}

func (m Model[T]) View() string {
	if !m.open {
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorWarning).
		Padding(0, 1)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.prompt,
		theme.StyleDimmed.Render("y: yes   n/esc: no"),
	))
}
