// Package loading renders the placeholder shown while data or the session
// is pending.
package loading

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/theme"
)

// Model wraps a spinner with a label.
type Model struct {
	spinner spinner.Model
	Label   string
}

func New(label string) Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	return Model{spinner: s, Label: label}
}

// Tick starts the animation.
func (m Model) Tick() tea.Cmd { return m.spinner.Tick }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// Glyph is the bare spinner frame.
func (m Model) Glyph() string { return m.spinner.View() }

// View renders the spinner and label centered in width x height.
func (m Model) View(width, height int) string {
	content := m.spinner.View() + " " + theme.StyleDimmed.Render(m.Label)
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
