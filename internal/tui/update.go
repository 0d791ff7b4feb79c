package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/config"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"github.com/akyairhashvil/studyplan/internal/service"
	"github.com/akyairhashvil/studyplan/internal/util"
	tea "github.com/charmbracelet/bubbletea"
)

func defaultKeys() *HandlerRegistry {
	r := NewHandlerRegistry()
	r.Register(KeyBinding{Keys: []string{"j", "down"}, Handler: cursorDown, Priority: 100})
	r.Register(KeyBinding{Keys: []string{"k", "up"}, Handler: cursorUp, Priority: 99})
	r.Register(KeyBinding{Keys: []string{"h", "left"}, Handler: prevDay, Description: "Prev day", Priority: 90})
	r.Register(KeyBinding{Keys: []string{"l", "right"}, Handler: nextDay, Description: "Next day", Priority: 89})
	r.Register(KeyBinding{Keys: []string{"t"}, Handler: today, Description: "Today", Priority: 88})
	r.Register(KeyBinding{Keys: []string{"["}, Handler: nudge(-1), Description: "Earlier", Priority: 80})
	r.Register(KeyBinding{Keys: []string{"]"}, Handler: nudge(1), Description: "Later", Priority: 79})
	r.Register(KeyBinding{Keys: []string{"c"}, Handler: toggleComplete, Description: "Done", Priority: 70})
	r.Register(KeyBinding{Keys: []string{"L"}, Handler: toggleLock, Description: "Lock", Priority: 69})
	r.Register(KeyBinding{Keys: []string{"d"}, Handler: archiveBlock, Description: "Archive", Priority: 68})
	r.Register(KeyBinding{Keys: []string{"n"}, Handler: startAdd, Description: "New", Priority: 60})
	r.Register(KeyBinding{Keys: []string{"r"}, Handler: regenerate, Description: "Regenerate", Priority: 50})
	r.Register(KeyBinding{Keys: []string{"f"}, Handler: refresh, Description: "Refresh", Priority: 49})
	r.Register(KeyBinding{Keys: []string{"p"}, Handler: writeReport, Description: "PDF", Priority: 40})
	r.Register(KeyBinding{Keys: []string{"q", "ctrl+c"}, Handler: quit, Description: "Quit", Priority: 0})
	return r
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case scheduleLoadedMsg:
		if msg.err != nil {
			cmd := m.setToast("Load failed: "+msg.err.Error(), true)
			return m, cmd
		}
		m.blocks = msg.blocks
		m.events = msg.events
		m.assignments = msg.assignments
		m.loaded = true
		m.clampCursor()
		return m, nil

	case outcomeMsg:
		if msg.err != nil {
			cmd := tea.Batch(m.setToast(msg.err.Error(), true), m.loadCmd())
			return m, cmd
		}
		text, rejected := outcomeToast(msg.op, msg.out)
		if msg.op == "move" && len(msg.out.Accepted) == 1 {
			m.selectedID = msg.out.Accepted[0].ID
			m.day = m.midnight(msg.out.Accepted[0].Start)
		}
		// Reloading reverts any optimistic change the store rejected.
		cmd := tea.Batch(m.setToast(text, rejected), m.loadCmd())
		return m, cmd

	case blockChangedMsg:
		if msg.err != nil {
			cmd := tea.Batch(m.setToast(msg.err.Error(), true), m.loadCmd())
			return m, cmd
		}
		cmd := tea.Batch(m.setToast(fmt.Sprintf("%s: %s", msg.block.Title, msg.op), false), m.loadCmd())
		return m, cmd

	case reportWrittenMsg:
		if msg.err != nil {
			cmd := m.setToast("Report failed: "+msg.err.Error(), true)
			return m, cmd
		}
		cmd := m.setToast("Report written to "+msg.path, false)
		return m, cmd

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.clearToast()
		}
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		next, cmd, _ := m.keys.Handle(m, msg.String())
		return next, cmd
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		in, err := parseQuickAdd(m.input.Value(), m.loc)
		if err != nil {
			cmd := m.setToast(err.Error(), true)
			return m, cmd
		}
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		return m, m.createCmd(in)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func cursorDown(m Model) (Model, tea.Cmd) {
	if m.cursor < len(m.dayBlocks())-1 {
		m.cursor++
	}
	if b, ok := m.selected(); ok {
		m.selectedID = b.ID
	}
	return m, nil
}

func cursorUp(m Model) (Model, tea.Cmd) {
	if m.cursor > 0 {
		m.cursor--
	}
	if b, ok := m.selected(); ok {
		m.selectedID = b.ID
	}
	return m, nil
}

func shiftDay(m Model, days int) Model {
	m.day = m.day.AddDate(0, 0, days)
	m.cursor = 0
	m.selectedID = ""
	m.clampCursor()
	return m
}

func prevDay(m Model) (Model, tea.Cmd) { return shiftDay(m, -1), nil }
func nextDay(m Model) (Model, tea.Cmd) { return shiftDay(m, 1), nil }

func today(m Model) (Model, tea.Cmd) {
	m.day = m.midnight(m.now())
	m.cursor = 0
	m.selectedID = ""
	m.clampCursor()
	return m, nil
}

// nudge moves the selected block by one step. The move is shown at once and
// reverted by the reload if the service rejects it.
func nudge(dir int) KeyHandler {
	return func(m Model) (Model, tea.Cmd) {
		b, ok := m.selected()
		if !ok {
			return m, nil
		}
		if b.Status != models.BlockPending {
			cmd := m.setToast("Only pending blocks can be moved", true)
			return m, cmd
		}
		delta := time.Duration(dir*config.MoveStepMinutes) * time.Minute
		start := b.Start.Add(delta)
		m.blocks = append([]models.ScheduledBlock(nil), m.blocks...)
		for i := range m.blocks {
			if m.blocks[i].ID == b.ID {
				m.blocks[i].Start = start
				m.blocks[i].End = m.blocks[i].End.Add(delta)
			}
		}
		return m, m.moveCmd(b.ID, start)
	}
}

func toggleComplete(m Model) (Model, tea.Cmd) {
	b, ok := m.selected()
	if !ok {
		return m, nil
	}
	if b.Status == models.BlockCompleted {
		return m, m.blockCmd("reopened", func(ctx context.Context) (models.ScheduledBlock, error) {
			return m.svc.UncompleteBlock(ctx, b.ID)
		})
	}
	return m, m.blockCmd("done", func(ctx context.Context) (models.ScheduledBlock, error) {
		return m.svc.CompleteBlock(ctx, b.ID)
	})
}

func toggleLock(m Model) (Model, tea.Cmd) {
	b, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, m.outcomeCmd("lock", func(ctx context.Context) (service.Outcome, error) {
		return m.svc.EditBlock(ctx, b.ID, scheduler.BlockEdit{Locked: util.Ptr(!b.Locked)})
	})
}

func archiveBlock(m Model) (Model, tea.Cmd) {
	b, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, m.blockCmd("archived", func(ctx context.Context) (models.ScheduledBlock, error) {
		return m.svc.DeleteBlock(ctx, b.ID)
	})
}

func startAdd(m Model) (Model, tea.Cmd) {
	m.adding = true
	m.clearToast()
	cmd := m.input.Focus()
	return m, cmd
}

func regenerate(m Model) (Model, tea.Cmd) {
	return m, m.outcomeCmd("regenerate", m.svc.RegenerateAll)
}

func refresh(m Model) (Model, tea.Cmd) {
	return m, m.outcomeCmd("refresh", m.svc.Refresh)
}

func writeReport(m Model) (Model, tea.Cmd) {
	if cmd := m.reportCmd(); cmd != nil {
		return m, cmd
	}
	cmd := m.setToast("Reports are not configured", true)
	return m, cmd
}

func quit(m Model) (Model, tea.Cmd) {
	return m, tea.Quit
}

// parseQuickAdd reads "<category> <minutes> <due> <title...>". Due is a date
// or a date with "T15:04".
func parseQuickAdd(s string, loc *time.Location) (service.AssignmentInput, error) {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return service.AssignmentInput{}, fmt.Errorf("format: <category> <minutes> <due> <title>")
	}
	category, err := models.ParseCategory(fields[0])
	if err != nil {
		return service.AssignmentInput{}, err
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil || minutes < 0 {
		return service.AssignmentInput{}, fmt.Errorf("minutes must be a whole number, got %q", fields[1])
	}
	due, err := util.ParseWhen(fields[2], loc)
	if err != nil {
		return service.AssignmentInput{}, err
	}
	return service.AssignmentInput{
		Title:            strings.Join(fields[3:], " "),
		Category:         category,
		Due:              due,
		EstimatedMinutes: minutes,
	}, nil
}
