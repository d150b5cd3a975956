// Package login is the email/password and Google sign-in page.
package login

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/identity"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/session"
	"github.com/freelance-hub/jobhub/internal/theme"
	"github.com/freelance-hub/jobhub/internal/views/toast"
)

// Authenticator is the part of the auth gateway the page drives.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (session.UserIdentity, error)
	FederatedSignIn(ctx context.Context) (session.UserIdentity, error)
}

// ResultMsg reports a finished sign-in attempt.
type ResultMsg struct {
	Federated bool
	Identity  session.UserIdentity
	Err       error
}

type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Google   key.Binding
	Register key.Binding
	Cancel   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "login"),
		),
		Google: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "sign in with Google"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "register"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

// Model is the login page.
type Model struct {
	ctx    context.Context
	auth   Authenticator
	keys   KeyMap
	from   string
	inputs [fieldCount]textinput.Model
	focus  int

	busy       bool
	waitGoogle bool
	cancel     context.CancelFunc // aborts a running Google flow
	err        string
}

// New creates the login page. from is the protected path that redirected
// here, or "" when the user opened the page directly.
func New(ctx context.Context, auth Authenticator, from string) Model {
	m := Model{
		ctx:  ctx,
		auth: auth,
		keys: DefaultKeyMap(),
		from: from,
	}
	m.inputs[fieldEmail] = textinput.New()
	m.inputs[fieldEmail].Placeholder = "Your email"
	m.inputs[fieldEmail].CharLimit = 254
	m.inputs[fieldPassword] = textinput.New()
	m.inputs[fieldPassword].Placeholder = "Password"
	m.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[fieldPassword].EchoCharacter = '•'
	for i := range m.inputs {
		m.inputs[i].Prompt = ""
		m.inputs[i].Width = 36
	}
	m.setFocus(fieldEmail)
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m *Model) SetSize(width, height int) {}

// Capturing reports that the page consumes text keys.
func (m Model) Capturing() bool { return true }

// From returns the path to return to after signing in.
func (m Model) From() string { return m.from }

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		m.busy = false
		m.waitGoogle = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m.finish(msg)

	case tea.KeyMsg:
		if m.busy {
			if m.waitGoogle && key.Matches(msg, m.keys.Cancel) && m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Google):
			return m.google()
		case key.Matches(msg, m.keys.Register):
			return m, router.Navigate(router.PathRegister)
		case key.Matches(msg, m.keys.Submit):
			if m.focus == fieldEmail {
				m.setFocus(fieldPassword)
				return m, nil
			}
			return m.submit()
		case key.Matches(msg, m.keys.Next):
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keys.Cancel):
			return m, router.Back()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	m.busy = true
	m.err = ""
	ctx, auth := m.ctx, m.auth
	return m, func() tea.Msg {
		id, err := auth.SignIn(ctx, email, password)
		return ResultMsg{Identity: id, Err: err}
	}
}

func (m Model) google() (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)
	m.busy = true
	m.waitGoogle = true
	m.cancel = cancel
	m.err = ""
	auth := m.auth
	return m, func() tea.Msg {
		id, err := auth.FederatedSignIn(ctx)
		return ResultMsg{Federated: true, Identity: id, Err: err}
	}
}

func (m Model) finish(msg ResultMsg) (Model, tea.Cmd) {
	next := router.AfterLogin(m.from)
	switch {
	case msg.Err == nil && msg.Federated:
		return m, tea.Batch(toast.Successf("Google sign-in successful! Redirecting..."), router.Replace(next))
	case msg.Err == nil:
		return m, tea.Batch(toast.Successf("Login successful! Redirecting..."), router.Replace(next))
	case errors.Is(msg.Err, identity.ErrAuthenticationCancelled):
		return m, toast.Infof("Google sign-in cancelled.")
	case errors.Is(msg.Err, identity.ErrFederationUnavailable):
		return m, toast.Errorf("Google sign-in is not configured.")
	case msg.Federated:
		log.Printf("login: google: %v", msg.Err)
		m.err = msg.Err.Error()
		return m, toast.Errorf("Google sign-in failed.")
	default:
		m.err = "Login failed. Check credentials."
		m.inputs[fieldPassword].SetValue("")
		return m, toast.Errorf("Login failed. Check credentials.")
	}
}

func (m Model) View() string {
	label := lipgloss.NewStyle().Width(10).Foreground(theme.ColorDimmed)
	row := func(i int, name string) string {
		l := label
		if i == m.focus {
			l = l.Foreground(theme.ColorBright).Bold(true)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, l.Render(name), m.inputs[i].View())
	}

	lines := []string{
		theme.StyleTitle.Render("Login to JobHub"),
		"",
		row(fieldEmail, "Email"),
		row(fieldPassword, "Password"),
		"",
	}
	switch {
	case m.waitGoogle:
		lines = append(lines, theme.StyleDimmed.Render("Waiting for Google sign-in in your browser... (esc to cancel)"))
	case m.busy:
		lines = append(lines, theme.StyleDimmed.Render("Signing in..."))
	default:
		lines = append(lines, theme.Button("enter  Login", m.focus == fieldPassword))
	}
	if m.err != "" {
		lines = append(lines, theme.StyleError.Render(m.err))
	}
	lines = append(lines,
		"",
		theme.StyleDimmed.Render("ctrl+g  Sign in with Google"),
		theme.StyleDimmed.Render("New here? ctrl+r to register"),
	)

	box := theme.StyleBorder.Padding(1, 3).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return box
}
