package router

import tea "github.com/charmbracelet/bubbletea"

// NavigateMsg asks the root model to show Path. Replace swaps the current
// history entry instead of pushing a new one.
type NavigateMsg struct {
	Path    string
	Replace bool
}

// BackMsg pops one history entry.
type BackMsg struct{}

// Navigate returns a command that navigates to path.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// Replace returns a command that replaces the current entry with path.
func Replace(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path, Replace: true} }
}

// Back returns a command that goes back one page.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}
