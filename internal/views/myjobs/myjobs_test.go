package myjobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/views/toast"
)

type fakeClient struct {
	jobs      []api.Job
	deleted   []string
	deleteN   int
	deleteErr error
	fetches   int
}

func (f *fakeClient) JobsByEmployer(_ context.Context, email string) ([]api.Job, error) {
	f.fetches++
	return f.jobs, nil
}

func (f *fakeClient) DeleteJob(_ context.Context, id string) (*api.DeleteResult, error) {
	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &api.DeleteResult{DeletedCount: f.deleteN}, nil
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func loaded(t *testing.T, f *fakeClient) Model {
	t.Helper()
	m := New(context.Background(), f, "ann@example.com")
	m.SetSize(100, 30)
	m, _ = m.Update(m.Init()())
	return m
}

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

var jobs = []api.Job{
	{ID: "j1", JobTitle: "Logo design", JobCategory: "Graphics Design", MinPrice: 50, MaxPrice: 150},
	{ID: "j2", JobTitle: "Blog posts", JobCategory: "Content Writing", MinPrice: 20, MaxPrice: 80},
}

func TestListAndNavigate(t *testing.T) {
	m := loaded(t, &fakeClient{jobs: jobs})
	if !strings.Contains(m.View(), "Blog posts") {
		t.Error("view should list posted jobs")
	}

	tests := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, "/job/j1"},
		{runeKey('e'), "/updateJob/j1"},
		{runeKey('a'), router.PathAddJob},
	}
	for _, tt := range tests {
		_, cmd := m.Update(tt.msg)
		if cmd == nil {
			t.Fatalf("%s produced no command", tt.msg)
		}
		nav, ok := cmd().(router.NavigateMsg)
		if !ok || nav.Path != tt.want {
			t.Errorf("%s navigated to %#v, want %s", tt.msg, nav, tt.want)
		}
	}
}

func TestDeleteConfirmed(t *testing.T) {
	f := &fakeClient{jobs: jobs, deleteN: 1}
	m := loaded(t, f)

	m, _ = m.Update(runeKey('x'))
	if !m.Capturing() {
		t.Fatal("delete should open the confirmation prompt")
	}
	if !strings.Contains(m.View(), `Are you sure you want to delete the job: "Logo design"?`) {
		t.Error("prompt should name the job")
	}

	m, cmd := m.Update(runeKey('y'))
	m, cmd = m.Update(cmd())
	if len(f.deleted) != 1 || f.deleted[0] != "j1" {
		t.Fatalf("deleted %v, want [j1]", f.deleted)
	}

	var refetched bool
	var text string
	for _, msg := range collect(cmd) {
		switch msg := msg.(type) {
		case toast.ShowMsg:
			text = msg.Text
		case JobsLoadedMsg:
			refetched = true
		}
	}
	if text != `Job "Logo design" deleted successfully!` {
		t.Errorf("toast = %q", text)
	}
	if !refetched {
		t.Error("a successful delete should reload the list")
	}
}

func TestDeleteDeclined(t *testing.T) {
	f := &fakeClient{jobs: jobs, deleteN: 1}
	m := loaded(t, f)

	m, _ = m.Update(runeKey('x'))
	m, cmd := m.Update(runeKey('n'))
	if cmd != nil || len(f.deleted) != 0 {
		t.Error("declining must not delete")
	}
	if m.Capturing() {
		t.Error("prompt should close")
	}
}

func TestDeleteFailures(t *testing.T) {
	tests := []struct {
		name string
		f    *fakeClient
		want string
	}{
		{"nothing deleted", &fakeClient{jobs: jobs}, "Failed to delete job."},
		{"request failed", &fakeClient{jobs: jobs, deleteErr: errors.New("boom")}, "An error occurred during deletion."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loaded(t, tt.f)
			m, _ = m.Update(runeKey('x'))
			m, cmd := m.Update(runeKey('y'))
			_, cmd = m.Update(cmd())
			show, ok := cmd().(toast.ShowMsg)
			if !ok || show.Kind != toast.Error || show.Text != tt.want {
				t.Errorf("got %#v, want error toast %q", show, tt.want)
			}
		})
	}
}

func TestEmptyState(t *testing.T) {
	m := loaded(t, &fakeClient{})
	if !strings.Contains(m.View(), "You haven't posted any jobs yet.") {
		t.Error("empty list should say so")
	}
	if _, cmd := m.Update(runeKey('x')); cmd != nil {
		t.Error("delete with no selection should do nothing")
	}
}
