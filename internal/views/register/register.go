// Package register is the account creation page.
package register

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

type Authenticator interface {
	Register(ctx context.Context, email, password string) (session.UserIdentity, error)
	UpdateProfile(ctx context.Context, displayName, avatarURL string) error
	FederatedSignIn(ctx context.Context) (session.UserIdentity, error)
}

// ResultMsg reports a finished registration or Google sign-in. ProfileErr
// is set when the account was created but the name and photo were not saved.
type ResultMsg struct {
	Federated  bool
	Identity   session.UserIdentity
	Err        error
	ProfileErr error
}

type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Google key.Binding
	Login  key.Binding
	Cancel key.Binding
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
			key.WithHelp("enter", "register"),
		),
		Google: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "sign in with Google"),
		),
		Login: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "login"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

const (
	fieldName = iota
	fieldEmail
	fieldPhoto
	fieldPassword
	fieldCount
)

var labels = [fieldCount]string{"Name", "Email", "Photo URL", "Password"}

// Model is the registration page.
type Model struct {
	ctx    context.Context
	auth   Authenticator
	keys   KeyMap
	inputs [fieldCount]textinput.Model
	focus  int

	busy       bool
	waitGoogle bool
	cancel     context.CancelFunc
	problem    map[int]string
}

func New(ctx context.Context, auth Authenticator) Model {
	m := Model{
		ctx:  ctx,
		auth: auth,
		keys: DefaultKeyMap(),
	}
	placeholders := [fieldCount]string{"Your name", "Your email", "https://your-photo.com", "Min 6 chars, A-Z, a-z"}
	for i := range m.inputs {
		m.inputs[i] = textinput.New()
		m.inputs[i].Prompt = ""
		m.inputs[i].Placeholder = placeholders[i]
		m.inputs[i].CharLimit = 256
		m.inputs[i].Width = 36
	}
	m.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[fieldPassword].EchoCharacter = '•'
	m.setFocus(fieldName)
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m *Model) SetSize(width, height int) {}

func (m Model) Capturing() bool { return true }

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
		case key.Matches(msg, m.keys.Login):
			return m, router.Navigate(router.PathLogin)
		case key.Matches(msg, m.keys.Submit):
			if m.focus < fieldPassword {
				m.setFocus(m.focus + 1)
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

func (m Model) value(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }

func (m Model) submit() (Model, tea.Cmd) {
	name, email, photo := m.value(fieldName), m.value(fieldEmail), m.value(fieldPhoto)
	password := m.inputs[fieldPassword].Value()

	// Policy failures are reported per field before any network call.
	creds := identity.Credentials{Email: email, Password: password}
	if err := creds.ValidateRegistration(); err != nil {
		m.problem = map[int]string{}
		if p := identity.FieldProblem(err, "email"); p != "" {
			m.problem[fieldEmail] = "Email " + p + "."
		}
		if p := identity.FieldProblem(err, "password"); p != "" {
			m.problem[fieldPassword] = "Password " + p + "."
		}
		if p, ok := m.problem[fieldPassword]; ok {
			return m, toast.Errorf(p)
		}
		return m, toast.Errorf(m.problem[fieldEmail])
	}

	m.problem = nil
	m.busy = true
	ctx, auth := m.ctx, m.auth
	return m, func() tea.Msg {
		id, err := auth.Register(ctx, email, password)
		if err != nil {
			return ResultMsg{Err: err}
		}
		perr := auth.UpdateProfile(ctx, name, photo)
		id.DisplayName, id.AvatarURL = name, photo
		return ResultMsg{Identity: id, ProfileErr: perr}
	}
}

func (m Model) google() (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)
	m.busy = true
	m.waitGoogle = true
	m.cancel = cancel
	auth := m.auth
	return m, func() tea.Msg {
		id, err := auth.FederatedSignIn(ctx)
		return ResultMsg{Federated: true, Identity: id, Err: err}
	}
}

func (m Model) finish(msg ResultMsg) (Model, tea.Cmd) {
	switch {
	case msg.Err == nil && msg.Federated:
		return m, tea.Batch(toast.Successf("Google sign-in successful!"), router.Replace(router.PathHome))
	case msg.Err == nil:
		cmds := []tea.Cmd{
			toast.Successf("Registration successful! Welcome to the Hub."),
			router.Replace(router.PathHome),
		}
		if msg.ProfileErr != nil {
			log.Printf("register: update profile: %v", msg.ProfileErr)
			cmds = append(cmds, toast.Errorf("Your name and photo could not be saved."))
		}
		return m, tea.Batch(cmds...)
	case errors.Is(msg.Err, identity.ErrAuthenticationCancelled):
		return m, toast.Infof("Google sign-in cancelled.")
	case errors.Is(msg.Err, identity.ErrFederationUnavailable):
		return m, toast.Errorf("Google sign-in is not configured.")
	case msg.Federated:
		log.Printf("register: google: %v", msg.Err)
		return m, toast.Errorf("Google sign-in failed.")
	case errors.Is(msg.Err, identity.ErrInvalidCredentialsFormat):
		// The provider rejected the email (taken or malformed).
		m.problem = map[int]string{fieldEmail: "This email cannot be registered."}
		return m, toast.Errorf("Registration failed. The email may already be in use.")
	default:
		log.Printf("register: %v", msg.Err)
		return m, toast.Errorf("Registration failed. Please try again.")
	}
}

func (m Model) View() string {
	label := lipgloss.NewStyle().Width(12).Foreground(theme.ColorDimmed)

	lines := []string{theme.StyleTitle.Render("Create an Account"), ""}
	for i := range m.inputs {
		l := label
		if i == m.focus {
			l = l.Foreground(theme.ColorBright).Bold(true)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, l.Render(labels[i]), m.inputs[i].View()))
		if p, ok := m.problem[i]; ok {
			lines = append(lines, lipgloss.NewStyle().MarginLeft(12).Render(theme.StyleError.Render(p)))
		}
	}
	lines = append(lines, "")

	switch {
	case m.waitGoogle:
		lines = append(lines, theme.StyleDimmed.Render("Waiting for Google sign-in in your browser... (esc to cancel)"))
	case m.busy:
		lines = append(lines, theme.StyleDimmed.Render("Creating your account..."))
	default:
		lines = append(lines, theme.Button("enter  Register", m.focus == fieldPassword))
	}
	lines = append(lines,
		"",
		theme.StyleDimmed.Render("ctrl+g  Sign in with Google"),
		theme.StyleDimmed.Render("Already have an account? ctrl+l to login"),
	)
	return theme.StyleBorder.Padding(1, 3).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
