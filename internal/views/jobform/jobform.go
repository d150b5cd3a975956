// Package jobform is the form behind Add Job and Update Job.
package jobform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freelance-hub/jobhub/internal/api"
	"github.com/freelance-hub/jobhub/internal/router"
	"github.com/freelance-hub/jobhub/internal/session"
	"github.com/freelance-hub/jobhub/internal/theme"
	"github.com/freelance-hub/jobhub/internal/views/toast"
	validation "github.com/go-ozzo/ozzo-validation"
)

// Client is the slice of the job API the form uses.
type Client interface {
	GetJob(ctx context.Context, id string) (*api.Job, error)
	CreateJob(ctx context.Context, job api.Job) (*api.InsertResult, error)
	UpdateJob(ctx context.Context, id string, job api.Job) (*api.UpdateResult, error)
}

// JobLoadedMsg carries the job being edited.
type JobLoadedMsg struct {
	ID  string
	Job *api.Job
	Err error
}

// CreatedMsg is returned after POST /jobs.
type CreatedMsg struct {
	Result *api.InsertResult
	Err    error
}

// UpdatedMsg is returned after PUT /job/{id}.
type UpdatedMsg struct {
	Result *api.UpdateResult
	Err    error
}

type field int

const (
	fieldTitle field = iota
	fieldCategory
	fieldMin
	fieldMax
	fieldDeadline
	fieldCover
	fieldDescription
	fieldCount
)

// errKeys maps fields to the json keys validation reports.
var errKeys = map[field]string{
	fieldTitle:       "jobTitle",
	fieldCategory:    "jobCategory",
	fieldMin:         "minPrice",
	fieldMax:         "maxPrice",
	fieldDeadline:    "deadline",
	fieldCover:       "coverImage",
	fieldDescription: "description",
}

var labels = map[field]string{
	fieldTitle:       "Job Title",
	fieldCategory:    "Category",
	fieldMin:         "Min Price ($)",
	fieldMax:         "Max Price ($)",
	fieldDeadline:    "Deadline",
	fieldCover:       "Cover Image URL",
	fieldDescription: "Description",
}

type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Submit key.Binding
	Back   key.Binding
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
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "change category"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// Model is the Add/Update Job form.
type Model struct {
	ctx    context.Context
	client Client
	keys   KeyMap
	viewer session.UserIdentity
	now    func() time.Time

	editID   string   // empty in add mode
	original *api.Job // loaded job in update mode

	inputs      [fieldCount]textinput.Model // category and description slots unused
	description textarea.Model
	category    int
	focus       field
	errs        validation.Errors

	loading    bool
	submitting bool
	loadErr    error

	width  int
	height int
}

// NewAdd creates an empty form for posting a job.
func NewAdd(ctx context.Context, client Client, viewer session.UserIdentity) Model {
	m := newModel(ctx, client, viewer)
	m.focusField(fieldTitle)
	return m
}

// NewUpdate creates a form for editing job id. The job is loaded by Init.
func NewUpdate(ctx context.Context, client Client, viewer session.UserIdentity, id string) Model {
	m := newModel(ctx, client, viewer)
	m.editID = id
	m.loading = true
	return m
}

func newModel(ctx context.Context, client Client, viewer session.UserIdentity) Model {
	m := Model{
		ctx:    ctx,
		client: client,
		keys:   DefaultKeyMap(),
		viewer: viewer,
		now:    time.Now,
	}
	placeholders := map[field]string{
		fieldTitle:    "e.g., Senior React Developer",
		fieldMin:      "500",
		fieldMax:      "1500",
		fieldDeadline: "YYYY-MM-DD",
		fieldCover:    "https://image-url.com/cover.jpg",
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[field(i)]
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.description = textarea.New()
	m.description.Placeholder = "Provide a detailed description of the job and requirements..."
	m.description.SetHeight(5)
	m.description.ShowLineNumbers = false
	return m
}

// Editing reports whether the form updates an existing job.
func (m Model) Editing() bool { return m.editID != "" }

// Capturing reports that the form consumes text keys.
func (m Model) Capturing() bool { return true }

func (m Model) Init() tea.Cmd {
	if !m.Editing() {
		return textinput.Blink
	}
	client, ctx, id := m.client, m.ctx, m.editID
	return func() tea.Msg {
		job, err := client.GetJob(ctx, id)
		return JobLoadedMsg{ID: id, Job: job, Err: err}
	}
}

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	w := min(max(width-24, 20), 80)
	for i := range m.inputs {
		m.inputs[i].Width = w
	}
	m.description.SetWidth(w)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case JobLoadedMsg:
		if msg.ID != m.editID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.loadErr = msg.Err
			return m, nil
		}
		if msg.Job == nil || msg.Job.EmployerEmail != m.viewer.Email {
			return m, tea.Batch(
				toast.Errorf("You are not authorized to update this job."),
				router.Replace(router.PathMyJobs),
			)
		}
		m.original = msg.Job
		m.fill(*msg.Job)
		m.focusField(fieldTitle)
		return m, textinput.Blink

	case CreatedMsg:
		m.submitting = false
		switch {
		case msg.Err != nil:
			log.Printf("jobform: create: %v", msg.Err)
			return m, toast.Errorf("An error occurred while posting the job.")
		case msg.Result.Inserted():
			m.reset()
			return m, toast.Successf("Job added successfully!")
		default:
			return m, toast.Errorf("Failed to add job. Please try again.")
		}

	case UpdatedMsg:
		m.submitting = false
		switch {
		case msg.Err != nil:
			log.Printf("jobform: update %s: %v", m.editID, msg.Err)
			return m, toast.Errorf("An error occurred during update.")
		case msg.Result.ModifiedCount > 0:
			return m, tea.Batch(
				toast.Successf("Job updated successfully!"),
				router.Navigate(router.PathMyJobs),
			)
		default:
			return m, toast.Infof("No changes detected or update failed.")
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, router.Back()
		}
		if m.loading || m.loadErr != nil {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case msg.Type == tea.KeyEnter && m.focus != fieldDescription:
			m.focusField(m.focus + 1)
			return m, nil
		case key.Matches(msg, m.keys.Next) && (m.focus != fieldDescription || msg.Type == tea.KeyTab):
			m.focusField((m.focus + 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keys.Prev) && (m.focus != fieldDescription || msg.Type == tea.KeyShiftTab):
			m.focusField((m.focus - 1 + fieldCount) % fieldCount)
			return m, nil
		case m.focus == fieldCategory && key.Matches(msg, m.keys.Left):
			m.category = (m.category - 1 + len(api.Categories)) % len(api.Categories)
			return m, nil
		case m.focus == fieldCategory && key.Matches(msg, m.keys.Right):
			m.category = (m.category + 1) % len(api.Categories)
			return m, nil
		}
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.focus == fieldDescription:
		m.description, cmd = m.description.Update(msg)
	case m.focus != fieldCategory:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField(f field) {
	for i := range m.inputs {
		if field(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if f == fieldDescription {
		m.description.Focus()
	} else {
		m.description.Blur()
	}
	m.focus = f
}

func (m *Model) fill(j api.Job) {
	m.inputs[fieldTitle].SetValue(j.JobTitle)
	m.inputs[fieldMin].SetValue(strconv.FormatFloat(j.MinPrice, 'f', -1, 64))
	m.inputs[fieldMax].SetValue(strconv.FormatFloat(j.MaxPrice, 'f', -1, 64))
	m.inputs[fieldDeadline].SetValue(j.Deadline)
	m.inputs[fieldCover].SetValue(j.CoverImage)
	m.description.SetValue(j.Description)
	for i, c := range api.Categories {
		if c == j.JobCategory {
			m.category = i
		}
	}
}

func (m *Model) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.description.Reset()
	m.category = 0
	m.errs = nil
	m.focusField(fieldTitle)
}

// Job builds the job from the form's current values.
func (m Model) Job() api.Job {
	j := api.Job{
		JobTitle:    strings.TrimSpace(m.inputs[fieldTitle].Value()),
		JobCategory: api.Categories[m.category],
		Description: strings.TrimSpace(m.description.Value()),
		CoverImage:  strings.TrimSpace(m.inputs[fieldCover].Value()),
		MinPrice:    parsePrice(m.inputs[fieldMin].Value()),
		MaxPrice:    parsePrice(m.inputs[fieldMax].Value()),
		Deadline:    strings.TrimSpace(m.inputs[fieldDeadline].Value()),
	}
	if m.original != nil {
		j.PostedBy = m.original.PostedBy
		j.EmployerEmail = m.original.EmployerEmail
		j.PostingDate = m.original.PostingDate
		return j
	}
	j.PostedBy = m.viewer.DisplayName
	if j.PostedBy == "" {
		j.PostedBy = "Unknown"
	}
	j.EmployerEmail = m.viewer.Email
	j.PostingDate = m.now().UTC().Format(time.RFC3339)
	return j
}

func parsePrice(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	job := m.Job()
	if err := job.Validate(); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			m.errs = errs
		}
		return m, toast.Errorf(summary(m.errs))
	}
	m.errs = nil
	m.submitting = true

	client, ctx := m.client, m.ctx
	if m.Editing() {
		id := m.editID
		return m, func() tea.Msg {
			res, err := client.UpdateJob(ctx, id, job)
			return UpdatedMsg{Result: res, Err: err}
		}
	}
	return m, func() tea.Msg {
		res, err := client.CreateJob(ctx, job)
		return CreatedMsg{Result: res, Err: err}
	}
}

// summary picks the toast text for a failed validation.
func summary(errs validation.Errors) string {
	if e, ok := errs["maxPrice"]; ok && strings.Contains(e.Error(), "minimum") {
		if _, bad := errs["minPrice"]; !bad {
			return "Minimum price must be less than maximum price."
		}
	}
	if errs["minPrice"] != nil || errs["maxPrice"] != nil {
		return "Please enter valid positive numbers for price range."
	}
	return "Please fill in all fields correctly."
}

func (m Model) View() string {
	if m.loading {
		return theme.StyleDimmed.Render("Loading job...")
	}
	if m.loadErr != nil {
		return theme.StyleError.Render("Job not found: " + m.loadErr.Error())
	}

	title := "Post a New Job"
	if m.Editing() && m.original != nil {
		title = "Update Job: " + m.original.JobTitle
	}

	lines := []string{theme.StyleTitle.Render(title), ""}
	for f := field(0); f < fieldCount; f++ {
		lines = append(lines, m.renderField(f))
	}

	readOnly := fmt.Sprintf("Posted by %s <%s>", m.Job().PostedBy, m.Job().EmployerEmail)
	lines = append(lines, "", theme.StyleDimmed.Render(readOnly))

	action := "ctrl+s  Post This Job"
	if m.Editing() {
		action = "ctrl+s  Update Job"
	}
	if m.submitting {
		action = "Saving..."
	}
	lines = append(lines, "", theme.Button(action, !m.submitting),
		theme.StyleDimmed.Render("tab/shift+tab:move  ←/→:category  esc:back"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderField(f field) string {
	labelStyle := lipgloss.NewStyle().Width(18).Foreground(theme.ColorDimmed)
	if f == m.focus {
		labelStyle = labelStyle.Foreground(theme.ColorBright).Bold(true)
	}

	var input string
	switch f {
	case fieldCategory:
		input = "‹ " + theme.CategoryBadge(api.Categories[m.category]) + " ›"
	case fieldDescription:
		input = m.description.View()
	default:
		input = m.inputs[f].View()
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(labels[f]), input)
	if err, ok := m.errs[errKeys[f]]; ok {
		row = lipgloss.JoinVertical(lipgloss.Left, row,
			lipgloss.NewStyle().MarginLeft(18).Render(theme.StyleError.Render(err.Error())))
	}
	return row
}
