package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/session"
	"github.com/freelance-hub/jobhub/internal/views/toast"
)

type fakeJobs struct{}

func (fakeJobs) ListJobs(context.Context, api.SortOrder) ([]api.Job, error) { return nil, nil }
func (fakeJobs) GetJob(_ context.Context, id string) (*api.Job, error) {
	return &api.Job{ID: id}, nil
}
func (fakeJobs) CreateJob(context.Context, api.Job) (*api.InsertResult, error) {
	return &api.InsertResult{}, nil
}
func (fakeJobs) UpdateJob(context.Context, string, api.Job) (*api.UpdateResult, error) {
	return &api.UpdateResult{}, nil
}
func (fakeJobs) DeleteJob(context.Context, string) (*api.DeleteResult, error) {
	return &api.DeleteResult{}, nil
}
func (fakeJobs) JobsByEmployer(context.Context, string) ([]api.Job, error) { return nil, nil }
func (fakeJobs) AcceptTask(context.Context, api.AcceptedTask) (*api.InsertResult, error) {
	return &api.InsertResult{}, nil
}
func (fakeJobs) AcceptedTasksByTaker(context.Context, string) ([]api.AcceptedTask, error) {
	return nil, nil
}
func (fakeJobs) DeleteAcceptedTask(context.Context, string) (*api.DeleteResult, error) {
	return &api.DeleteResult{}, nil
}

type fakeAuth struct {
	store    *session.Store
	signOuts int
	outErr   error
}

func (f *fakeAuth) Register(context.Context, string, string) (session.UserIdentity, error) {
	return session.UserIdentity{}, nil
}
func (f *fakeAuth) SignIn(context.Context, string, string) (session.UserIdentity, error) {
	return session.UserIdentity{}, nil
}
func (f *fakeAuth) FederatedSignIn(context.Context) (session.UserIdentity, error) {
	return session.UserIdentity{}, nil
}
func (f *fakeAuth) UpdateProfile(context.Context, string, string) error { return nil }
func (f *fakeAuth) SignOut(context.Context) error {
	f.signOuts++
	f.store.SetIdentity(nil)
	return f.outErr
}

func newModel(t *testing.T, store *session.Store) (Model, *fakeAuth) {
	t.Helper()
	auth := &fakeAuth{store: store}
	m := New(fakeJobs{}, auth, store)
	t.Cleanup(func() { m.cancel(); m.feed.Close() })
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, auth
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func goTo(t *testing.T, m Model, path string) Model {
	t.Helper()
	return update(t, m, router.NavigateMsg{Path: path})
}

func signedIn(email string) *session.Store {
	s := session.NewStore()
	s.SetIdentity(&session.UserIdentity{Email: email, DisplayName: "Ann"})
	s.SetResolving(false)
	return s
}

func signedOut() *session.Store {
	s := session.NewStore()
	s.SetResolving(false)
	return s
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestPublicPageRendersWhileResolving(t *testing.T) {
	m, _ := newModel(t, session.NewStore())
	m = update(t, m, router.NavigateMsg{Path: router.PathHome, Replace: true})

	if m.Pending() || m.Page() != router.PageHome {
		t.Fatalf("page = %d pending = %v, want home", m.Page(), m.Pending())
	}
	if !strings.Contains(m.View(), "checking session") {
		t.Error("navbar should show the resolving indicator")
	}
}

func TestProtectedPageWaitsForResolution(t *testing.T) {
	store := session.NewStore()
	m, _ := newModel(t, store)
	m = goTo(t, m, router.PathAddJob)

	if !m.Pending() {
		t.Fatal("protected page must wait while resolving")
	}
	if !strings.Contains(m.View(), "Checking your session...") {
		t.Error("pending page should render the loading placeholder")
	}

	store.SetIdentity(&session.UserIdentity{Email: "ann@example.com"})
	store.SetResolving(false)
	m = update(t, m, SessionMsg{})

	if m.Pending() || m.Page() != router.PageAddJob {
		t.Errorf("page = %d pending = %v, want add job", m.Page(), m.Pending())
	}
}

func TestResolvedWithoutIdentityRedirects(t *testing.T) {
	store := session.NewStore()
	m, _ := newModel(t, store)
	m = goTo(t, m, router.PathHome)
	m = goTo(t, m, router.PathMyTasks)

	store.SetResolving(false)
	m = update(t, m, SessionMsg{})

	if m.Page() != router.PageLogin || m.Path() != router.PathLogin {
		t.Fatalf("page = %d path = %q, want login", m.Page(), m.Path())
	}
	if m.login.From() != router.PathMyTasks {
		t.Errorf("login from = %q, want %q", m.login.From(), router.PathMyTasks)
	}
	if got := m.history; len(got) != 2 || got[1] != router.PathLogin {
		t.Errorf("history = %v, want the redirect to replace the protected entry", got)
	}
}

func TestSignOutOnProtectedPageRedirects(t *testing.T) {
	store := signedIn("ann@example.com")
	m, _ := newModel(t, store)
	m = goTo(t, m, router.PathMyJobs)
	if m.Page() != router.PageMyJobs {
		t.Fatalf("page = %d, want my jobs", m.Page())
	}

	store.SetIdentity(nil)
	m = update(t, m, SessionMsg{})
	if m.Page() != router.PageLogin {
		t.Errorf("page = %d, want login after sign-out", m.Page())
	}
}

func TestAllowedPageSurvivesNewCycle(t *testing.T) {
	store := signedIn("ann@example.com")
	m, _ := newModel(t, store)
	m = goTo(t, m, router.PathMyJobs)

	store.SetResolving(true)
	m = update(t, m, SessionMsg{})
	if m.Pending() || m.Page() != router.PageMyJobs {
		t.Errorf("page = %d pending = %v, want my jobs kept", m.Page(), m.Pending())
	}
}

func TestUnknownPath(t *testing.T) {
	m, _ := newModel(t, signedOut())
	m = goTo(t, m, "/nowhere")
	if m.Page() != router.PageNotFound {
		t.Fatalf("page = %d, want not found", m.Page())
	}
	if !strings.Contains(m.View(), "Page Not Found") {
		t.Error("view should render the not-found page")
	}
}

func TestBack(t *testing.T) {
	m, _ := newModel(t, signedOut())
	m = goTo(t, m, router.PathHome)
	m = goTo(t, m, router.PathAllJobs)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Page() != router.PageHome {
		t.Errorf("page = %d, want home after esc", m.Page())
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Page() != router.PageHome || len(m.history) != 1 {
		t.Error("back on the first entry should stay put")
	}
}

func TestNavKeys(t *testing.T) {
	tests := []struct {
		name  string
		store *session.Store
		key   rune
		want  router.Page
	}{
		{"all jobs", signedOut(), '2', router.PageAllJobs},
		{"private link hidden", signedOut(), '3', router.PageHome},
		{"add job", signedIn("ann@example.com"), '3', router.PageAddJob},
		{"my tasks", signedIn("ann@example.com"), '5', router.PageMyTasks},
		{"login", signedOut(), 'L', router.PageLogin},
		{"register", signedOut(), 'R', router.PageRegister},
		{"login hidden when signed in", signedIn("ann@example.com"), 'L', router.PageHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newModel(t, tt.store)
			m = goTo(t, m, router.PathHome)
			m = update(t, m, runeKey(tt.key))
			if m.Page() != tt.want {
				t.Errorf("page = %d, want %d", m.Page(), tt.want)
			}
		})
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, signedOut())
	m = goTo(t, m, router.PathHome)
	_, cmd := updateCmd(t, m, runeKey('q'))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce tea.QuitMsg")
	}
}

func TestCapturingPageOwnsKeys(t *testing.T) {
	m, _ := newModel(t, signedOut())
	m = goTo(t, m, router.PathLogin)

	m = update(t, m, runeKey('q'))
	if m.Page() != router.PageLogin {
		t.Fatal("typing must not navigate away")
	}
	if got := m.login.View(); !strings.Contains(got, "q") {
		t.Error("q should reach the email field")
	}

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should always quit")
	}
}

func TestLogout(t *testing.T) {
	store := signedIn("ann@example.com")
	m, auth := newModel(t, store)
	m = goTo(t, m, router.PathHome)

	m, cmd := updateCmd(t, m, runeKey('O'))
	if cmd == nil {
		t.Fatal("O should sign out")
	}
	m, cmd = updateCmd(t, m, cmd())
	if auth.signOuts != 1 {
		t.Errorf("SignOut called %d times, want 1", auth.signOuts)
	}
	if show, ok := cmd().(toast.ShowMsg); !ok || show.Text != "Logged out successfully!" {
		t.Errorf("got %#v, want the logout toast", show)
	}

	m = update(t, m, SessionMsg{})
	if m.session.Authenticated() {
		t.Error("session should be cleared")
	}
}

func TestLogoutFailure(t *testing.T) {
	store := signedIn("ann@example.com")
	m, auth := newModel(t, store)
	auth.outErr = errors.New("network down")
	m = goTo(t, m, router.PathHome)

	m, cmd := updateCmd(t, m, runeKey('O'))
	_, cmd = updateCmd(t, m, cmd())
	if show, ok := cmd().(toast.ShowMsg); !ok || show.Kind != toast.Error {
		t.Errorf("got %#v, want an error toast", show)
	}
}

func TestToastsMirroredToDebugLog(t *testing.T) {
	m, _ := newModel(t, signedOut())
	m = goTo(t, m, router.PathHome)
	m = update(t, m, toast.ShowMsg{Kind: toast.Error, Text: "Failed to delete job."})

	if m.toasts.Len() != 1 {
		t.Errorf("toasts = %d, want 1", m.toasts.Len())
	}
	if m.debug.Count("err") != 1 {
		t.Errorf("debug errors = %d, want 1", m.debug.Count("err"))
	}
	if !strings.Contains(m.View(), "Failed to delete job.") {
		t.Error("toast should be visible")
	}
}

func TestDebugOverlay(t *testing.T) {
	m, _ := newModel(t, signedOut())
	m = goTo(t, m, router.PathHome)

	m = update(t, m, runeKey('D'))
	if m.overlay != OverlayDebug || !strings.Contains(m.View(), "DEBUG LOG") {
		t.Fatal("D should open the debug log")
	}
	m = update(t, m, runeKey('1'))
	if m.overlay != OverlayDebug {
		t.Error("keys other than esc should not leak through the overlay")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.overlay != OverlayNone {
		t.Error("esc should close the overlay")
	}
}

func TestSessionFeed(t *testing.T) {
	store := session.NewStore()
	m, _ := newModel(t, store)

	store.SetResolving(false)
	msg := m.feed.Next(context.Background())()
	ev, ok := msg.(SessionMsg)
	if !ok || ev.Event.Kind != session.EventResolvingChanged {
		t.Fatalf("feed delivered %#v, want the resolving event", msg)
	}
}

func TestAuthURLShownOnLogin(t *testing.T) {
	m, _ := newModel(t, signedOut())
	m = goTo(t, m, router.PathLogin)

	m = update(t, m, AuthURLMsg{URL: "https://accounts.example.com/o/oauth2/auth?state=abc"})
	if !strings.Contains(m.View(), "state=abc") {
		t.Error("consent link should be shown on the login page")
	}
	m = goTo(t, m, router.PathHome)
	if m.authURL != "" {
		t.Error("consent link should be cleared by navigation")
	}
}
