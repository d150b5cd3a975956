// Package status renders the navigation bar.
package status

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/session"
	"github.com/freelance-hub/jobhub/internal/theme"
)

// Link is a navbar entry with its shortcut.
type Link struct {
	Key   string
	Label string
	Path  string
	// Private links are only shown to signed-in users.
	Private bool
}

// Links are the navbar entries in display order.
var Links = []Link{
	{Key: "1", Label: "Home", Path: router.PathHome},
	{Key: "2", Label: "All Jobs", Path: router.PathAllJobs},
	{Key: "3", Label: "Add Job", Path: router.PathAddJob, Private: true},
	{Key: "4", Label: "My Posted Jobs", Path: router.PathMyJobs, Private: true},
	{Key: "5", Label: "My Accepted Tasks", Path: router.PathMyTasks, Private: true},
}

// Model holds the navbar state.
type Model struct {
	Session session.Session
	Active  string // current path
	Spinner string // spinner frame shown while resolving
	Width   int
}

func New() Model {
	return Model{Session: session.Session{Resolving: true}}
}

// View renders the navbar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	brand := theme.StyleTitle.Render("JobHub")

	var links []string
	for _, l := range Links {
		if l.Private && !m.Session.Authenticated() {
			continue
		}
		style := theme.StyleDimmed
		if l.Path == m.Active || (l.Path != router.PathHome && strings.HasPrefix(m.Active, l.Path)) {
			style = theme.StyleSelected
		}
		links = append(links, style.Render(l.Key+" "+l.Label))
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := brand + sep + strings.Join(links, "  ") + sep + m.userView()

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func (m Model) userView() string {
	switch {
	case m.Session.Resolving:
		return m.Spinner + theme.StyleDimmed.Render(" checking session")
	case m.Session.Authenticated():
		name := lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("● " + m.Session.Identity.Name())
		return name + theme.StyleDimmed.Render("  O logout")
	default:
		return theme.StyleDimmed.Render("L login  R register")
	}
}
