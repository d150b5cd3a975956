package alljobs

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
)

type fakeLister struct {
	sorts []api.SortOrder
}

func (f *fakeLister) ListJobs(_ context.Context, sort api.SortOrder) ([]api.Job, error) {
	f.sorts = append(f.sorts, sort)
	return []api.Job{{ID: "j1", JobTitle: "Landing page", JobCategory: "Web Development", MinPrice: 100, MaxPrice: 300}}, nil
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestLoadAndOpen(t *testing.T) {
	f := &fakeLister{}
	m := New(context.Background(), f)
	m.SetSize(120, 30)

	m, _ = m.Update(m.Init()())
	if len(m.Jobs()) != 1 {
		t.Fatalf("Jobs() = %d, want 1", len(m.Jobs()))
	}
	if !strings.Contains(m.View(), "Landing page") {
		t.Error("view should list the job title")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should navigate")
	}
	nav, ok := cmd().(router.NavigateMsg)
	if !ok || nav.Path != "/job/j1" {
		t.Errorf("enter produced %#v, want navigation to /job/j1", nav)
	}
}

func TestSortCycle(t *testing.T) {
	f := &fakeLister{}
	m := New(context.Background(), f)
	m, _ = m.Update(m.Init()())

	want := []api.SortOrder{api.SortAsc, api.SortDesc, api.SortDefault}
	for _, w := range want {
		var cmd tea.Cmd
		m, cmd = m.Update(runeKey('s'))
		if m.Sort() != w {
			t.Fatalf("Sort() = %q, want %q", m.Sort(), w)
		}
		m, _ = m.Update(cmd())
	}
	if got := f.sorts; len(got) != 4 || got[1] != api.SortAsc || got[2] != api.SortDesc {
		t.Errorf("requested sorts = %v", got)
	}
}

func TestStaleSortIgnored(t *testing.T) {
	m := New(context.Background(), &fakeLister{})
	m, _ = m.Update(runeKey('s')) // now asc, request in flight
	m, _ = m.Update(JobsLoadedMsg{Sort: api.SortDefault, Jobs: []api.Job{{JobTitle: "old"}}})
	if len(m.Jobs()) != 0 {
		t.Error("results for a superseded sort should be dropped")
	}
}
