package home

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
)

type fakeLister struct{ jobs []api.Job }

func (f fakeLister) ListJobs(context.Context, api.SortOrder) ([]api.Job, error) {
	return f.jobs, nil
}

var sample = []api.Job{
	{ID: "w1", JobTitle: "Landing page", JobCategory: "Web Development", PostingDate: "2026-10-01T00:00:00Z"},
	{ID: "w2", JobTitle: "Shop backend", JobCategory: "Web Development", PostingDate: "2026-10-05T00:00:00Z"},
	{ID: "m1", JobTitle: "SEO audit", JobCategory: "Digital Marketing", PostingDate: "2026-10-03T00:00:00Z"},
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func loaded(t *testing.T) Model {
	t.Helper()
	m := New(context.Background(), fakeLister{jobs: sample})
	m.SetSize(100, 40)
	m, _ = m.Update(JobsLoadedMsg{Jobs: sample})
	return m
}

func TestNewestFirstInCategory(t *testing.T) {
	m := loaded(t)
	list := m.inCategory()
	if len(list) != 2 || list[0].ID != "w2" {
		t.Fatalf("inCategory() = %+v, want w2 first", list)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if nav, ok := cmd().(router.NavigateMsg); !ok || nav.Path != "/job/w2" {
		t.Errorf("enter navigated to %#v", nav)
	}
}

func TestCategoryTabs(t *testing.T) {
	m := loaded(t)
	if !strings.Contains(m.View(), "Web Development (2)") {
		t.Error("tab should show the category count")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.Category() != "Digital Marketing" {
		t.Fatalf("Category() = %q", m.Category())
	}
	if !strings.Contains(m.View(), "SEO audit") {
		t.Error("view should list the marketing job")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "No jobs found in this category yet.") {
		t.Error("empty category should say so")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.Category() != api.Categories[len(api.Categories)-1] {
		t.Errorf("left from the first tab should wrap, got %q", m.Category())
	}
}

func TestSlideAnimationSettles(t *testing.T) {
	m := loaded(t)

	m, cmd := m.Update(slideMsg{id: m.id})
	if m.Slide() != 1 || !m.Animating() {
		t.Fatalf("slide = %d animating = %v, want 1 and true", m.Slide(), m.Animating())
	}
	if cmd == nil {
		t.Fatal("a slide change should schedule frames and the next slide")
	}

	start := m.offset
	for i := 0; i < 600 && m.Animating(); i++ {
		m, _ = m.Update(frameMsg{id: m.id})
		if i == 0 && m.offset >= start {
			t.Errorf("first frame should move toward 0, offset %v from %v", m.offset, start)
		}
	}
	if m.Animating() || m.offset != 0 {
		t.Errorf("spring did not settle: offset %v", m.offset)
	}
}

func TestForeignTimersIgnored(t *testing.T) {
	m := loaded(t)
	other := New(context.Background(), fakeLister{})

	m, cmd := m.Update(slideMsg{id: other.id})
	if cmd != nil || m.Slide() != 0 {
		t.Error("a slide tick from another page instance must be dropped")
	}
	if _, cmd := m.Update(frameMsg{id: m.id}); cmd != nil {
		t.Error("frames while idle should not reschedule")
	}
}

func TestSlidesWrap(t *testing.T) {
	m := loaded(t)
	for range slides {
		m, _ = m.Update(runeKey('n'))
	}
	if m.Slide() != 0 {
		t.Errorf("Slide() = %d after a full cycle, want 0", m.Slide())
	}
}

func TestExplore(t *testing.T) {
	m := loaded(t)
	_, cmd := m.Update(runeKey('e'))
	if nav, ok := cmd().(router.NavigateMsg); !ok || nav.Path != router.PathAllJobs {
		t.Errorf("e navigated to %#v", nav)
	}
}
