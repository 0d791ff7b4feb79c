package tui

import (
	"context"
	"time"

	"github.com/akyairhashvil/studyplan/internal/config"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/report"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"github.com/akyairhashvil/studyplan/internal/service"
	"github.com/akyairhashvil/studyplan/internal/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PlannerService is the part of the scheduling service the dashboard drives.
type PlannerService interface {
	Schedule(ctx context.Context) ([]models.ScheduledBlock, error)
	Assignments(ctx context.Context) ([]models.Assignment, error)
	Events(ctx context.Context) ([]models.CalendarEvent, error)
	CreateAssignment(ctx context.Context, in service.AssignmentInput) (models.Assignment, service.Outcome, error)
	MoveBlock(ctx context.Context, id string, start time.Time) (service.Outcome, error)
	EditBlock(ctx context.Context, id string, edit scheduler.BlockEdit) (service.Outcome, error)
	CompleteBlock(ctx context.Context, id string) (models.ScheduledBlock, error)
	UncompleteBlock(ctx context.Context, id string) (models.ScheduledBlock, error)
	DeleteBlock(ctx context.Context, id string) (models.ScheduledBlock, error)
	Refresh(ctx context.Context) (service.Outcome, error)
	RegenerateAll(ctx context.Context) (service.Outcome, error)
}

var _ PlannerService = (*service.Service)(nil)

// ReportWriter renders a weekly report and returns where it was written.
type ReportWriter func(report.Week) (string, error)

// Options configures the dashboard.
type Options struct {
	Location      *time.Location
	Now           func() time.Time
	WriteReport   ReportWriter
	Theme         string
	ToastDuration time.Duration
}

// Model is the bubbletea model of the schedule dashboard.
type Model struct {
	svc         PlannerService
	ctx         context.Context
	loc         *time.Location
	now         func() time.Time
	writeReport ReportWriter
	keys        *HandlerRegistry

	day         time.Time // local midnight of the day on screen
	blocks      []models.ScheduledBlock
	events      []models.CalendarEvent
	assignments []models.Assignment
	cursor      int
	selectedID  string
	loaded      bool

	adding bool
	input  textinput.Model

	toast         string
	toastIsError  bool
	toastSeq      int
	toastDuration time.Duration

	width, height int
}

// New builds the dashboard. ctx bounds every service call the model issues.
func New(ctx context.Context, svc PlannerService, opts Options) Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = config.ToastDuration
	}
	SetTheme(opts.Theme)

	ti := textinput.New()
	ti.Placeholder = "exam 240 2026-03-09 Midterm"
	ti.CharLimit = config.MaxTitleLength + 40
	ti.Width = 50

	m := Model{
		svc:           svc,
		ctx:           ctx,
		loc:           opts.Location,
		now:           opts.Now,
		writeReport:   opts.WriteReport,
		input:         ti,
		toastDuration: opts.ToastDuration,
	}
	m.day = m.midnight(m.now())
	m.keys = defaultKeys()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) midnight(t time.Time) time.Time {
	t = t.In(m.loc)
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, m.loc)
}

// dayBlocks returns the active blocks that start on the day on screen.
func (m Model) dayBlocks() []models.ScheduledBlock {
	next := m.day.AddDate(0, 0, 1)
	var out []models.ScheduledBlock
	for _, b := range m.blocks {
		if !b.Start.Before(m.day) && b.Start.Before(next) {
			out = append(out, b)
		}
	}
	return out
}

func (m Model) dayEvents() []models.CalendarEvent {
	next := m.day.AddDate(0, 0, 1)
	var out []models.CalendarEvent
	for _, e := range m.events {
		if e.Start.Before(next) && e.End.After(m.day) {
			out = append(out, e)
		}
	}
	return out
}

func (m Model) selected() (models.ScheduledBlock, bool) {
	blocks := m.dayBlocks()
	if m.cursor < 0 || m.cursor >= len(blocks) {
		return models.ScheduledBlock{}, false
	}
	return blocks[m.cursor], true
}

// clampCursor keeps the cursor on the previously selected block when it is
// still visible, otherwise inside the day's list.
func (m *Model) clampCursor() {
	blocks := m.dayBlocks()
	if m.selectedID != "" {
		for i, b := range blocks {
			if b.ID == m.selectedID {
				m.cursor = i
				return
			}
		}
	}
	m.cursor = util.Clamp(m.cursor, 0, max(len(blocks)-1, 0))
	if b, ok := m.selected(); ok {
		m.selectedID = b.ID
	} else {
		m.selectedID = ""
	}
}

func (m *Model) setToast(msg string, isError bool) tea.Cmd {
	m.toast = msg
	m.toastIsError = isError
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (m *Model) clearToast() {
	m.toast = ""
	m.toastIsError = false
}
