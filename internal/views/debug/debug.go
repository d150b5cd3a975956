// Package debug provides a scrollable event log overlay for navigation,
// session and API activity.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/theme"
)

const maxEntries = 200

// Kinds is the filter cycle. The empty kind shows everything.
var Kinds = []string{"", "auth", "api", "nav", "err"}

// Entry is a single event log line.
type Entry struct {
	Time    time.Time
	Kind    string // "auth", "api", "nav", "err", "ok"
	Message string
}

// KeyMap holds the overlay's own bindings. Scrolling uses the viewport's.
type KeyMap struct {
	Filter key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Filter: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "filter"),
		),
	}
}

// Model holds the retained entries and the scroll position.
type Model struct {
	Entries []Entry

	keys   KeyMap
	filter int
	vp     viewport.Model
	width  int
}

func New() Model {
	return Model{
		keys:  DefaultKeyMap(),
		vp:    viewport.New(0, 0),
		width: 20,
	}
}

// Add appends an entry, caps the buffer and jumps to the newest line.
func (m *Model) Add(kind, message string) {
	m.Entries = append(m.Entries, Entry{
		Time:    time.Now(),
		Kind:    kind,
		Message: message,
	})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	m.refresh(true)
}

// Addf is Add with formatting.
func (m *Model) Addf(kind, format string, args ...any) {
	m.Add(kind, fmt.Sprintf(format, args...))
}

// Count returns how many retained entries have kind.
func (m Model) Count(kind string) int {
	n := 0
	for _, e := range m.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the kind being shown, or "" for all of them.
func (m Model) Filter() string { return Kinds[m.filter] }

// Below returns how many lines are hidden under the visible window.
func (m Model) Below() int {
	return max(m.vp.TotalLineCount()-m.vp.Height-m.vp.YOffset, 0)
}

// SetSize fits the panel into width x height, keeping the scroll anchored
// to the bottom if it was there.
func (m *Model) SetSize(width, height int) {
	atBottom := m.Below() == 0
	m.width = max(width-4, 20)
	m.vp.Width = m.width - 4
	m.vp.Height = max(height-6, 3)
	m.refresh(atBottom)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Filter) {
		m.filter = (m.filter + 1) % len(Kinds)
		m.refresh(true)
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Model) refresh(toBottom bool) {
	kind := m.Filter()
	lineStyle := lipgloss.NewStyle().MaxWidth(max(m.vp.Width, 1))
	var lines []string
	for _, e := range m.Entries {
		if kind != "" && e.Kind != kind {
			continue
		}
		ts := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
		k := lipgloss.NewStyle().Foreground(kindToColor(e.Kind)).Width(4).Render(e.Kind)
		lines = append(lines, lineStyle.Render(ts+" "+k+" "+e.Message))
	}
	if len(lines) == 0 {
		lines = []string{theme.StyleDimmed.Render("No events recorded yet.")}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if toBottom {
		m.vp.GotoBottom()
	}
}

// View renders the log as an overlay panel.
func (m Model) View() string {
	title := theme.StyleHeader.Render(" DEBUG LOG ")
	if kind := m.Filter(); kind != "" {
		title += theme.StyleDimmed.Render("  only " + kind)
	}

	footer := fmt.Sprintf("j/k:scroll  tab:filter  esc:close  %d entries  %d errors", len(m.Entries), m.Count("err"))
	if below := m.Below(); below > 0 {
		footer = fmt.Sprintf("↓ %d more  ", below) + footer
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.vp.View(), theme.StyleDimmed.Render(footer))
	return lipgloss.NewStyle().
		Width(m.width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func kindToColor(kind string) lipgloss.Color {
	switch kind {
	case "auth":
		return theme.ColorSecondary
	case "api":
		return theme.ColorInfo
	case "err":
		return theme.ColorDanger
	case "nav":
		return theme.ColorPrimary
	case "ok":
		return theme.ColorSuccess
	default:
		return theme.ColorDimmed
	}
}
