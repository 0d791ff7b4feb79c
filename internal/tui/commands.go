package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/config"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/report"
	"github.com/akyairhashvil/studyplan/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// --- Messages ---

type scheduleLoadedMsg struct {
	blocks      []models.ScheduledBlock
	events      []models.CalendarEvent
	assignments []models.Assignment
	err         error
}

// outcomeMsg carries the result of a call that may reject placements.
type outcomeMsg struct {
	op  string
	out service.Outcome
	err error
}

type blockChangedMsg struct {
	op    string
	block models.ScheduledBlock
	err   error
}

type reportWrittenMsg struct {
	path string
	err  error
}

type toastExpiredMsg struct {
	seq int
}

func (m Model) request() (context.Context, context.CancelFunc) {
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, config.RequestTimeout)
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.request()
		defer cancel()
		var msg scheduleLoadedMsg
		if msg.blocks, msg.err = m.svc.Schedule(ctx); msg.err != nil {
			return msg
		}
		if msg.events, msg.err = m.svc.Events(ctx); msg.err != nil {
			return msg
		}
		msg.assignments, msg.err = m.svc.Assignments(ctx)
		return msg
	}
}

func (m Model) outcomeCmd(op string, fn func(ctx context.Context) (service.Outcome, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.request()
		defer cancel()
		out, err := fn(ctx)
		return outcomeMsg{op: op, out: out, err: err}
	}
}

func (m Model) blockCmd(op string, fn func(ctx context.Context) (models.ScheduledBlock, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.request()
		defer cancel()
		b, err := fn(ctx)
		return blockChangedMsg{op: op, block: b, err: err}
	}
}

func (m Model) moveCmd(id string, start time.Time) tea.Cmd {
	return m.outcomeCmd("move", func(ctx context.Context) (service.Outcome, error) {
		return m.svc.MoveBlock(ctx, id, start)
	})
}

func (m Model) createCmd(in service.AssignmentInput) tea.Cmd {
	return m.outcomeCmd("add", func(ctx context.Context) (service.Outcome, error) {
		_, out, err := m.svc.CreateAssignment(ctx, in)
		return out, err
	})
}

func (m Model) reportCmd() tea.Cmd {
	if m.writeReport == nil {
		return nil
	}
	week := report.Week{
		Start:       report.WeekStart(m.day, m.loc),
		Location:    m.loc,
		Blocks:      append([]models.ScheduledBlock(nil), m.blocks...),
		Events:      append([]models.CalendarEvent(nil), m.events...),
		Assignments: append([]models.Assignment(nil), m.assignments...),
	}
	write := m.writeReport
	return func() tea.Msg {
		path, err := write(week)
		return reportWrittenMsg{path: path, err: err}
	}
}

// outcomeToast summarizes an outcome for the footer.
func outcomeToast(op string, out service.Outcome) (string, bool) {
	if len(out.Rejected) > 0 {
		msg := out.Rejected[0].Message()
		if n := len(out.Rejected) - 1; n > 0 {
			msg = fmt.Sprintf("%s (+%d more)", msg, n)
		}
		return msg, true
	}
	switch op {
	case "move":
		return "Block moved", false
	case "add":
		return fmt.Sprintf("Planned %d %s", len(out.Accepted), plural(len(out.Accepted), "block", "blocks")), false
	case "regenerate", "refresh":
		return fmt.Sprintf("%s: %d %s placed", strings.ToUpper(op[:1])+op[1:], len(out.Accepted), plural(len(out.Accepted), "block", "blocks")), false
	default:
		return "Saved", false
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
