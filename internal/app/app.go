package app

import (
	"context"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/session"
	"github.com/freelance-hub/jobhub/internal/theme"
	"github.com/freelance-hub/jobhub/internal/views/alljobs"
	"github.com/freelance-hub/jobhub/internal/views/debug"
	"github.com/freelance-hub/jobhub/internal/views/home"
	"github.com/freelance-hub/jobhub/internal/views/jobdetail"
	"github.com/freelance-hub/jobhub/internal/views/jobform"
	"github.com/freelance-hub/jobhub/internal/views/loading"
	"github.com/freelance-hub/jobhub/internal/views/login"
	"github.com/freelance-hub/jobhub/internal/views/myjobs"
	"github.com/freelance-hub/jobhub/internal/views/mytasks"
	"github.com/freelance-hub/jobhub/internal/views/register"
	"github.com/freelance-hub/jobhub/internal/views/status"
	"github.com/freelance-hub/jobhub/internal/views/toast"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
	OverlayHelp
)

// JobAPI is the job API the pages call.
type JobAPI interface {
	ListJobs(ctx context.Context, sort api.SortOrder) ([]api.Job, error)
	GetJob(ctx context.Context, id string) (*api.Job, error)
	CreateJob(ctx context.Context, job api.Job) (*api.InsertResult, error)
	UpdateJob(ctx context.Context, id string, job api.Job) (*api.UpdateResult, error)
	DeleteJob(ctx context.Context, id string) (*api.DeleteResult, error)
	JobsByEmployer(ctx context.Context, email string) ([]api.Job, error)
	AcceptTask(ctx context.Context, task api.AcceptedTask) (*api.InsertResult, error)
	AcceptedTasksByTaker(ctx context.Context, email string) ([]api.AcceptedTask, error)
	DeleteAcceptedTask(ctx context.Context, id string) (*api.DeleteResult, error)
}

// Auth is the auth gateway as seen by the UI.
type Auth interface {
	Register(ctx context.Context, email, password string) (session.UserIdentity, error)
	SignIn(ctx context.Context, email, password string) (session.UserIdentity, error)
	FederatedSignIn(ctx context.Context) (session.UserIdentity, error)
	UpdateProfile(ctx context.Context, displayName, avatarURL string) error
	SignOut(ctx context.Context) error
}

// AuthURLMsg carries the consent page of a running Google sign-in.
type AuthURLMsg struct {
	URL string
}

// LogoutMsg is returned after the navbar's sign-out.
type LogoutMsg struct {
	Err error
}

// Model is the root Bubble Tea model.
type Model struct {
	jobs   JobAPI
	auth   Auth
	store  session.Reader
	feed   *feed
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	session session.Session

	// Navigation. history holds displayed paths, newest last; path is the
	// entry being shown or waiting on the session.
	history   []string
	path      string
	page      router.Page
	pending   bool
	loginFrom string
	overlay   Overlay
	authURL   string // shown on the login/register pages while set

	// Pages. Only the one matching page is live.
	home     home.Model
	allJobs  alljobs.Model
	detail   jobdetail.Model
	form     jobform.Model
	myJobs   myjobs.Model
	myTasks  mytasks.Model
	login    login.Model
	register register.Model

	// Chrome.
	navbar  status.Model
	spinner loading.Model
	toasts  toast.Model
	debug   debug.Model
	help    help.Model
}

// New creates the root model. It subscribes to store right away so no
// session write between construction and the first render is missed.
func New(jobs JobAPI, auth Auth, store session.Reader) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		jobs:    jobs,
		auth:    auth,
		store:   store,
		feed:    newFeed(store),
		ctx:     ctx,
		cancel:  cancel,
		keys:    DefaultKeyMap(),
		session: store.Current(),
		navbar:  status.New(),
		spinner: loading.New("Checking your session..."),
		toasts:  toast.New(),
		debug:   debug.New(),
		help:    help.New(),
	}
	m.navbar.Session = m.session
	return m
}

// Init opens the home page and starts listening for session events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.feed.Next(m.ctx),
		m.spinner.Tick(),
		router.Replace(router.PathHome),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.navbar.Width = msg.Width
		m.help.Width = msg.Width
		m.debug.SetSize(m.bodySize())
		m.resizePage()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionMsg:
		m.debug.Addf("auth", "%s: %s", msg.Event.Kind, describe(msg.Event.Session))
		cmd := m.syncSession()
		return m, tea.Batch(cmd, m.feed.Next(m.ctx))

	case router.NavigateMsg:
		return m, m.navigate(msg.Path, msg.Replace)

	case router.BackMsg:
		return m, m.back()

	case toast.ShowMsg:
		kind := "ok"
		if msg.Kind == toast.Error {
			kind = "err"
		}
		m.debug.Add(kind, msg.Text)
		return m, m.toasts.Push(msg.Kind, msg.Text)

	case toast.ExpireMsg:
		m.toasts.Expire(msg.ID)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.navbar.Spinner = m.spinner.Glyph()
		return m, cmd

	case AuthURLMsg:
		m.authURL = msg.URL
		m.debug.Add("auth", "google consent page: "+msg.URL)
		return m, toast.Infof("Continue Google sign-in in your browser.")

	case login.ResultMsg, register.ResultMsg:
		m.authURL = ""
		return m, m.updatePage(msg)

	case LogoutMsg:
		if msg.Err != nil {
			log.Printf("app: logout: %v", msg.Err)
			return m, toast.Errorf("Logout failed. Please try again.")
		}
		return m, toast.Successf("Logged out successfully!")
	}

	return m, m.updatePage(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, m.quit()
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Back),
			m.overlay == OverlayDebug && key.Matches(msg, m.keys.Debug),
			m.overlay == OverlayHelp && key.Matches(msg, m.keys.Help):
			m.overlay = OverlayNone
		case m.overlay == OverlayDebug:
			var cmd tea.Cmd
			m.debug, cmd = m.debug.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.capturing() {
		return m, m.updatePage(msg)
	}

	signedIn := m.session.Authenticated()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Back):
		return m, m.back()
	case key.Matches(msg, m.keys.Home):
		return m, m.navigate(router.PathHome, false)
	case key.Matches(msg, m.keys.AllJobs):
		return m, m.navigate(router.PathAllJobs, false)
	case signedIn && key.Matches(msg, m.keys.AddJob):
		return m, m.navigate(router.PathAddJob, false)
	case signedIn && key.Matches(msg, m.keys.MyJobs):
		return m, m.navigate(router.PathMyJobs, false)
	case signedIn && key.Matches(msg, m.keys.MyTasks):
		return m, m.navigate(router.PathMyTasks, false)
	case !signedIn && key.Matches(msg, m.keys.Login):
		return m, m.navigate(router.PathLogin, false)
	case !signedIn && key.Matches(msg, m.keys.Register):
		return m, m.navigate(router.PathRegister, false)
	case signedIn && key.Matches(msg, m.keys.Logout):
		auth, ctx := m.auth, m.ctx
		return m, func() tea.Msg {
			return LogoutMsg{Err: auth.SignOut(ctx)}
		}
	}

	return m, m.updatePage(msg)
}

func (m *Model) quit() tea.Cmd {
	m.cancel()
	m.feed.Close()
	return tea.Quit
}

// navigate shows path, pushing it on the history or replacing the top entry.
func (m *Model) navigate(path string, replace bool) tea.Cmd {
	switch {
	case replace && len(m.history) > 0:
		m.history[len(m.history)-1] = path
	case len(m.history) == 0 || m.history[len(m.history)-1] != path:
		m.history = append(m.history, path)
	}
	m.debug.Addf("nav", "%s", path)
	return m.show(path)
}

func (m *Model) back() tea.Cmd {
	if len(m.history) < 2 {
		return nil
	}
	m.history = m.history[:len(m.history)-1]
	path := m.history[len(m.history)-1]
	m.debug.Addf("nav", "back to %s", path)
	return m.show(path)
}

// show resolves path against the current session and mounts the result.
// A redirect replaces the top history entry so going back skips it.
func (m *Model) show(path string) tea.Cmd {
	m.path = path
	m.navbar.Active = path
	res := router.Resolve(m.session, path)

	switch res.Decision.Outcome {
	case router.Pending:
		m.pending = true
		return nil
	case router.Redirect:
		m.debug.Addf("nav", "%s requires sign-in, redirecting to %s", path, res.Decision.To)
		m.loginFrom = res.Decision.From
		if len(m.history) == 0 {
			m.history = append(m.history, res.Decision.To)
		}
		m.history[len(m.history)-1] = res.Decision.To
		m.path = res.Decision.To
		m.navbar.Active = res.Decision.To
		match, found := router.Lookup(res.Decision.To)
		return m.mount(match, found)
	}
	return m.mount(res.Match, res.Found)
}

// syncSession re-reads the store and re-runs the guard for the current
// entry. A page that was allowed stays mounted while a new cycle resolves.
func (m *Model) syncSession() tea.Cmd {
	prev := m.session
	m.session = m.store.Current()
	m.navbar.Session = m.session

	if m.pending || len(m.history) == 0 {
		if m.path == "" {
			return nil
		}
		return m.show(m.path)
	}

	res := router.Resolve(m.session, m.path)
	switch res.Decision.Outcome {
	case router.Pending:
		return nil
	case router.Redirect:
		return m.show(m.path)
	}
	if res.Match.Route.Protected && prev.Email() != m.session.Email() {
		return m.mount(res.Match, res.Found)
	}
	return nil
}

func (m Model) viewer() session.UserIdentity {
	if m.session.Identity == nil {
		return session.UserIdentity{}
	}
	return *m.session.Identity
}

// mount builds a fresh model for the matched page.
func (m *Model) mount(match router.Match, found bool) tea.Cmd {
	m.pending = false
	m.authURL = ""
	if !found {
		m.page = router.PageNotFound
		return nil
	}

	ctx, viewer := m.ctx, m.viewer()
	m.page = match.Route.Page

	var cmd tea.Cmd
	switch m.page {
	case router.PageHome:
		m.home = home.New(ctx, m.jobs)
		cmd = m.home.Init()
	case router.PageAllJobs:
		m.allJobs = alljobs.New(ctx, m.jobs)
		cmd = m.allJobs.Init()
	case router.PageJobDetail:
		m.detail = jobdetail.New(ctx, m.jobs, match.Param("id"), viewer)
		cmd = m.detail.Init()
	case router.PageAddJob:
		m.form = jobform.NewAdd(ctx, m.jobs, viewer)
		cmd = m.form.Init()
	case router.PageUpdateJob:
		m.form = jobform.NewUpdate(ctx, m.jobs, viewer, match.Param("id"))
		cmd = m.form.Init()
	case router.PageMyJobs:
		m.myJobs = myjobs.New(ctx, m.jobs, viewer.Email)
		cmd = m.myJobs.Init()
	case router.PageMyTasks:
		m.myTasks = mytasks.New(ctx, m.jobs, viewer.Email)
		cmd = m.myTasks.Init()
	case router.PageLogin:
		m.login = login.New(ctx, m.auth, m.loginFrom)
		m.loginFrom = ""
		cmd = m.login.Init()
	case router.PageRegister:
		m.register = register.New(ctx, m.auth)
		cmd = m.register.Init()
	}
	m.resizePage()
	return cmd
}

// bodySize is the area left for a page under the navbar and above the footer.
func (m Model) bodySize() (int, int) {
	return m.width, max(m.height-6, 5)
}

func (m *Model) resizePage() {
	if m.pending {
		return
	}
	w, h := m.bodySize()
	switch m.page {
	case router.PageHome:
		m.home.SetSize(w, h)
	case router.PageAllJobs:
		m.allJobs.SetSize(w, h)
	case router.PageJobDetail:
		m.detail.SetSize(w, h)
	case router.PageAddJob, router.PageUpdateJob:
		m.form.SetSize(w, h)
	case router.PageMyJobs:
		m.myJobs.SetSize(w, h)
	case router.PageMyTasks:
		m.myTasks.SetSize(w, h)
	case router.PageLogin:
		m.login.SetSize(w, h)
	case router.PageRegister:
		m.register.SetSize(w, h)
	}
}

// capturing reports whether the page consumes plain keys (text input or an
// open prompt), in which case only ctrl+c stays global.
func (m Model) capturing() bool {
	if m.pending {
		return false
	}
	switch m.page {
	case router.PageAddJob, router.PageUpdateJob:
		return m.form.Capturing()
	case router.PageLogin:
		return m.login.Capturing()
	case router.PageRegister:
		return m.register.Capturing()
	case router.PageMyJobs:
		return m.myJobs.Capturing()
	case router.PageMyTasks:
		return m.myTasks.Capturing()
	}
	return false
}

func (m *Model) updatePage(msg tea.Msg) tea.Cmd {
	if m.pending {
		return nil
	}
	var cmd tea.Cmd
	switch m.page {
	case router.PageHome:
		m.home, cmd = m.home.Update(msg)
	case router.PageAllJobs:
		m.allJobs, cmd = m.allJobs.Update(msg)
	case router.PageJobDetail:
		m.detail, cmd = m.detail.Update(msg)
	case router.PageAddJob, router.PageUpdateJob:
		m.form, cmd = m.form.Update(msg)
	case router.PageMyJobs:
		m.myJobs, cmd = m.myJobs.Update(msg)
	case router.PageMyTasks:
		m.myTasks, cmd = m.myTasks.Update(msg)
	case router.PageLogin:
		m.login, cmd = m.login.Update(msg)
	case router.PageRegister:
		m.register, cmd = m.register.Update(msg)
	}
	return cmd
}

// Page returns the last mounted page.
func (m Model) Page() router.Page { return m.page }

// Pending reports whether the current entry waits on the session.
func (m Model) Pending() bool { return m.pending }

// Path returns the current history entry.
func (m Model) Path() string { return m.path }

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	w, h := m.bodySize()
	var body string
	switch m.overlay {
	case OverlayDebug:
		body = m.debug.View()
	case OverlayHelp:
		full := m.help
		full.ShowAll = true
		body = theme.StyleBorder.Padding(1, 2).Render(
			lipgloss.JoinVertical(lipgloss.Left, theme.StyleHeader.Render(" KEYS "), "", full.View(m.keys)))
	default:
		body = m.pageView(w, h)
	}

	sections := []string{m.navbar.View()}
	if m.toasts.Len() > 0 {
		sections = append(sections, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, m.toasts.View()))
	}
	sections = append(sections, body, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) pageView(w, h int) string {
	if m.pending {
		return m.spinner.View(w, h)
	}
	switch m.page {
	case router.PageHome:
		return m.home.View()
	case router.PageAllJobs:
		return m.allJobs.View()
	case router.PageJobDetail:
		return m.detail.View()
	case router.PageAddJob, router.PageUpdateJob:
		return m.form.View()
	case router.PageMyJobs:
		return m.myJobs.View()
	case router.PageMyTasks:
		return m.myTasks.View()
	case router.PageLogin:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.withAuthURL(m.login.View()))
	case router.PageRegister:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.withAuthURL(m.register.View()))
	}
	return notFoundView(w, h)
}

func (m Model) withAuthURL(view string) string {
	if m.authURL == "" {
		return view
	}
	link := lipgloss.NewStyle().Width(max(min(m.width-4, 100), 20)).Render(
		theme.StyleDimmed.Render("If your browser did not open, visit: ") + m.authURL)
	return lipgloss.JoinVertical(lipgloss.Left, view, "", link)
}

func notFoundView(w, h int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDanger).Render("404"),
		theme.StyleTitle.Render("Page Not Found"),
		theme.StyleDimmed.Render("The page you are looking for does not exist."),
		"",
		theme.StyleDimmed.Render("press 1 to go home"),
	)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, content)
}

// describe summarizes a session for the debug log without exposing the email.
func describe(s session.Session) string {
	switch {
	case s.Resolving && s.Identity != nil:
		return "resolving, signed in as " + s.Identity.String()
	case s.Resolving:
		return "resolving"
	case s.Identity != nil:
		return "signed in as " + s.Identity.String()
	default:
		return "signed out"
	}
}
