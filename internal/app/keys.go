package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keyboard bindings. Apart from q they are digits
// or uppercase letters; pages bind lowercase keys.
type KeyMap struct {
	Home      key.Binding
	AllJobs   key.Binding
	AddJob    key.Binding
	MyJobs    key.Binding
	MyTasks   key.Binding
	Login     key.Binding
	Register  key.Binding
	Logout    key.Binding
	Back      key.Binding
	Debug     key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		AllJobs: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "all jobs"),
		),
		AddJob: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "add job"),
		),
		MyJobs: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "my posted jobs"),
		),
		MyTasks: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "my accepted tasks"),
		),
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "login"),
		),
		Register: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "register"),
		),
		Logout: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "logout"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Debug: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "debug log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Login, k.Logout, k.Debug, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.AllJobs, k.AddJob, k.MyJobs, k.MyTasks},
		{k.Login, k.Register, k.Logout},
		{k.Back, k.Debug, k.Help, k.Quit},
	}
}
