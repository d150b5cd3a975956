package jobdetail

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/session"
	"github.com/freelance-hub/jobhub/internal/views/toast"
)

type fakeClient struct {
	job      api.Job
	result   api.InsertResult
	accepted []api.AcceptedTask
}

func (f *fakeClient) GetJob(_ context.Context, id string) (*api.Job, error) {
	j := f.job
	j.ID = id
	return &j, nil
}

func (f *fakeClient) AcceptTask(_ context.Context, task api.AcceptedTask) (*api.InsertResult, error) {
	f.accepted = append(f.accepted, task)
	r := f.result
	return &r, nil
}

var job = api.Job{
	JobTitle:      "Logo design",
	JobCategory:   "Graphics Design",
	Description:   "A **bold** logo for a bakery.",
	EmployerEmail: "ann@example.com",
	PostedBy:      "Ann",
	MinPrice:      50,
	MaxPrice:      150,
	Deadline:      "2026-11-30",
}

var accept = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}

func loaded(t *testing.T, f *fakeClient, viewer session.UserIdentity) Model {
	t.Helper()
	m := New(context.Background(), f, "j1", viewer)
	m.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	m.SetSize(100, 30)
	m, _ = m.Update(m.Init()())
	return m
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestViewRendersJob(t *testing.T) {
	m := loaded(t, &fakeClient{job: job}, session.UserIdentity{Email: "bob@example.com"})
	v := m.View()
	if !strings.Contains(v, "Logo design") {
		t.Error("view should contain the title")
	}
	if !strings.Contains(v, "Accept This Task") {
		t.Error("view should offer accepting")
	}
}

func TestEmployerCannotAccept(t *testing.T) {
	f := &fakeClient{job: job}
	m := loaded(t, f, session.UserIdentity{Email: "ann@example.com"})
	if !m.IsEmployer() {
		t.Fatal("IsEmployer() = false for the poster")
	}

	_, cmd := m.Update(accept)
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if show, ok := msgs[0].(toast.ShowMsg); !ok || show.Kind != toast.Error {
		t.Errorf("got %#v, want an error toast", msgs[0])
	}
	if len(f.accepted) != 0 {
		t.Error("the employer's accept must not reach the API")
	}
}

func TestAcceptNavigatesToTasks(t *testing.T) {
	f := &fakeClient{job: job, result: api.InsertResult{InsertedID: "t1"}}
	m := loaded(t, f, session.UserIdentity{Email: "bob@example.com", DisplayName: "Bob"})

	m, cmd := m.Update(accept)
	m, cmd = m.Update(cmd())

	if len(f.accepted) != 1 {
		t.Fatalf("accepted %d tasks, want 1", len(f.accepted))
	}
	task := f.accepted[0]
	if task.JobID != "j1" || task.JobTakerEmail != "bob@example.com" || task.Status != api.TaskPending {
		t.Errorf("unexpected task %+v", task)
	}
	if task.AcceptanceDate != "2026-10-01T12:00:00Z" {
		t.Errorf("AcceptanceDate = %q", task.AcceptanceDate)
	}

	var navigated bool
	for _, msg := range collect(cmd) {
		if nav, ok := msg.(router.NavigateMsg); ok && nav.Path == router.PathMyTasks {
			navigated = true
		}
	}
	if !navigated {
		t.Error("a successful accept should navigate to My Accepted Tasks")
	}
}

func TestAlreadyAccepted(t *testing.T) {
	f := &fakeClient{job: job, result: api.InsertResult{Message: api.MessageAlreadyAccepted}}
	m := loaded(t, f, session.UserIdentity{Email: "bob@example.com"})

	m, cmd := m.Update(accept)
	_, cmd = m.Update(cmd())
	msgs := collect(cmd)
	show, ok := msgs[0].(toast.ShowMsg)
	if !ok || !strings.Contains(show.Text, "already accepted") {
		t.Errorf("got %#v, want the already-accepted toast", msgs[0])
	}
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2026-11-30":               "November 30, 2026",
		"2026-10-01T08:30:00.000Z": "October 1, 2026",
		"someday":                  "someday",
	}
	for in, want := range tests {
		if got := formatDate(in); got != want {
			t.Errorf("formatDate(%q) = %q, want %q", in, got, want)
		}
	}
}
