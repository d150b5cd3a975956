// Package home is the landing page: a rotating banner, jobs browsed by
// category and the platform pitch.
package home

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/theme"
)

const (
	fps          = 60
	slideEvery   = 5 * time.Second
	perCategory  = 6
	springFreq   = 6.0
	springDamp   = 0.7
	settledDelta = 0.5
)

// Lister fetches the job list.
type Lister interface {
	ListJobs(ctx context.Context, sort api.SortOrder) ([]api.Job, error)
}

type JobsLoadedMsg struct {
	Jobs []api.Job
	Err  error
}

// frameMsg and slideMsg carry the id of the Model that scheduled them so a
// replaced page's timers die out.
type frameMsg struct{ id int64 }
type slideMsg struct{ id int64 }

var instances atomic.Int64

type slide struct {
	headline string
	text     string
}

var slides = []slide{
	{"Your Next Freelance Job Awaits",
		"Connect with top employers and skilled freelancers for Web Development, Digital Marketing, Graphics Design, and more."},
	{"Post a Job in Minutes",
		"Describe the task, set a budget range and a deadline. Freelancers can accept it right away."},
	{"Track the Work You Took On",
		"Every task you accept lands in My Accepted Tasks. Mark it done or cancel it when plans change."},
}

var features = []struct{ title, text string }{
	{"Secure Payments", "Your transactions are always safe. We use escrow to protect both freelancers and employers."},
	{"Verified Community", "We verify every employer and freelancer to ensure quality, trust, and professionalism."},
	{"Fast & Efficient", "Our platform is optimized for quick job posting and finding talent in record time."},
}

var testimonials = []struct{ quote, name, title string }{
	{"Finding quality developers used to be a pain. Freelance Hub made it seamless. The escrow system gives me complete peace of mind.",
		"Jasmine Khan", "Startup CEO"},
	{"I landed my dream job within a week! The platform is intuitive, and the job diversity is exactly what a modern freelancer needs.",
		"David Lee", "Senior Web Developer"},
}

type KeyMap struct {
	PrevTab   key.Binding
	NextTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Explore   key.Binding
	NextSlide key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevTab: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "category"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/k", "move"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view details"),
		),
		Explore: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "explore jobs"),
		),
		NextSlide: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next slide"),
		),
	}
}

// Model is the home page.
type Model struct {
	id     int64
	ctx    context.Context
	jobs   Lister
	keys   KeyMap
	spring harmonica.Spring

	slide     int
	offset    float64
	velocity  float64
	animating bool

	all    []api.Job
	loaded bool
	err    error
	tab    int
	cursor int

	width  int
	height int
}

func New(ctx context.Context, jobs Lister) Model {
	return Model{
		id:     instances.Add(1),
		ctx:    ctx,
		jobs:   jobs,
		keys:   DefaultKeyMap(),
		spring: harmonica.NewSpring(harmonica.FPS(fps), springFreq, springDamp),
		width:  80,
	}
}

func (m Model) Init() tea.Cmd {
	jobs, ctx := m.jobs, m.ctx
	fetch := func() tea.Msg {
		list, err := jobs.ListJobs(ctx, api.SortDefault)
		return JobsLoadedMsg{Jobs: list, Err: err}
	}
	return tea.Batch(fetch, m.nextSlide())
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Slide returns the index of the banner slide on screen.
func (m Model) Slide() int { return m.slide }

// Category returns the selected category tab.
func (m Model) Category() string { return api.Categories[m.tab] }

// Animating reports whether the banner is still moving.
func (m Model) Animating() bool { return m.animating }

func (m Model) nextSlide() tea.Cmd {
	id := m.id
	return tea.Tick(slideEvery, func(time.Time) tea.Msg { return slideMsg{id: id} })
}

func (m Model) nextFrame() tea.Cmd {
	id := m.id
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return frameMsg{id: id} })
}

// advance moves to slide i and starts it sliding in from the right edge.
func (m *Model) advance(i int) tea.Cmd {
	m.slide = i % len(slides)
	m.offset = float64(m.width)
	m.velocity = 0
	if m.animating {
		return nil
	}
	m.animating = true
	return m.nextFrame()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case JobsLoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.all = msg.Jobs
		}
		return m, nil

	case slideMsg:
		if msg.id != m.id {
			return m, nil
		}
		return m, tea.Batch(m.advance(m.slide+1), m.nextSlide())

	case frameMsg:
		if msg.id != m.id || !m.animating {
			return m, nil
		}
		m.offset, m.velocity = m.spring.Update(m.offset, m.velocity, 0)
		if math.Abs(m.offset) < settledDelta && math.Abs(m.velocity) < settledDelta {
			m.offset, m.velocity = 0, 0
			m.animating = false
			return m, nil
		}
		return m, m.nextFrame()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + len(api.Categories) - 1) % len(api.Categories)
			m.cursor = 0
		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % len(api.Categories)
			m.cursor = 0
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.inCategory())-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Open):
			if list := m.inCategory(); m.cursor < len(list) {
				return m, router.Navigate(router.JobPath(list[m.cursor].ID))
			}
		case key.Matches(msg, m.keys.Explore):
			return m, router.Navigate(router.PathAllJobs)
		case key.Matches(msg, m.keys.NextSlide):
			return m, m.advance(m.slide + 1)
		}
	}
	return m, nil
}

// inCategory returns the newest jobs of the selected category.
func (m Model) inCategory() []api.Job {
	var out []api.Job
	for _, j := range m.all {
		if j.JobCategory == api.Categories[m.tab] {
			out = append(out, j)
		}
	}
	slices.SortStableFunc(out, func(a, b api.Job) int { return strings.Compare(b.PostingDate, a.PostingDate) })
	if len(out) > perCategory {
		out = out[:perCategory]
	}
	return out
}

// counts returns the number of jobs per category.
func (m Model) counts() map[string]int {
	c := make(map[string]int, len(api.Categories))
	for _, j := range m.all {
		c[j.JobCategory]++
	}
	return c
}

func (m Model) View() string {
	width := max(m.width, 40)
	sections := []string{
		m.bannerView(width),
		"",
		m.categoryView(width),
		"",
		m.featuresView(width),
		"",
		m.testimonialsView(width),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) bannerView(width int) string {
	s := slides[m.slide]
	inner := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorAccent).Render(s.headline),
		lipgloss.NewStyle().Width(min(width-8, 90)).Render(s.text),
	)
	shift := max(int(math.Round(m.offset)), 0)
	body := lipgloss.NewStyle().MarginLeft(shift).MaxWidth(width - 4).Render(inner)

	dots := make([]string, len(slides))
	for i := range slides {
		if i == m.slide {
			dots[i] = lipgloss.NewStyle().Foreground(theme.ColorAccent).Render("●")
		} else {
			dots[i] = theme.StyleDimmed.Render("○")
		}
	}
	actions := theme.StyleDimmed.Render("e explore jobs   R register   n next")

	return theme.StyleBorder.
		BorderForeground(theme.ColorPrimary).
		Width(width-2).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, "", strings.Join(dots, " ")+"   "+actions))
}

func (m Model) categoryView(width int) string {
	counts := m.counts()
	tabs := make([]string, len(api.Categories))
	for i, c := range api.Categories {
		label := fmt.Sprintf(" %s (%d) ", c, counts[c])
		if i == m.tab {
			tabs[i] = lipgloss.NewStyle().
				Foreground(theme.CategoryColor(c)).
				Bold(true).
				Underline(true).
				Render(label)
		} else {
			tabs[i] = theme.StyleDimmed.Render(label)
		}
	}

	lines := []string{
		theme.StyleTitle.Render("Browse Jobs by Category"),
		lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(tabs, "│")),
		"",
	}

	switch {
	case m.err != nil:
		lines = append(lines, theme.StyleError.Render("Could not load jobs: "+m.err.Error()))
	case !m.loaded:
		lines = append(lines, theme.StyleDimmed.Render("Loading jobs..."))
	default:
		list := m.inCategory()
		if len(list) == 0 {
			lines = append(lines, theme.StyleDimmed.Render("No jobs found in this category yet."))
		}
		for i, j := range list {
			row := fmt.Sprintf("%-*s %s  due %s",
				max(width-40, 20), theme.Truncate(j.JobTitle, max(width-40, 20)),
				theme.PriceRange(j.MinPrice, j.MaxPrice), j.Deadline)
			if i == m.cursor {
				row = theme.StyleSelected.Render("▸ " + row)
			} else {
				row = "  " + row
			}
			lines = append(lines, row)
		}
	}
	lines = append(lines, theme.StyleDimmed.Render("←/→:category  j/k:move  enter:details"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) featuresView(width int) string {
	colWidth := max((width-4)/len(features), 20)
	cols := make([]string, len(features))
	for i, f := range features {
		cols[i] = lipgloss.NewStyle().Width(colWidth).PaddingRight(2).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Foreground(theme.ColorSecondary).Render(f.title),
				theme.StyleDimmed.Render(f.text),
			))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Render("Why Choose Freelance Hub?"),
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
	)
}

func (m Model) testimonialsView(width int) string {
	lines := []string{theme.StyleTitle.Render("What Our Users Say")}
	for _, t := range testimonials {
		quote := lipgloss.NewStyle().Italic(true).Width(min(width-4, 100)).Render(`"` + t.quote + `"`)
		lines = append(lines, quote, theme.StyleDimmed.Render("  - "+t.name+", "+t.title), "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
