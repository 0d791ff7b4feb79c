package tui

import (
	"context"
	"sync"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"github.com/akyairhashvil/studyplan/internal/service"
)

type fakeService struct {
	mu          sync.Mutex
	blocks      []models.ScheduledBlock
	events      []models.CalendarEvent
	assignments []models.Assignment

	moveOutcome *service.Outcome
	calls       []string
	moves       []time.Time
	edits       []scheduler.BlockEdit
	created     []service.AssignmentInput
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) Schedule(context.Context) ([]models.ScheduledBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ScheduledBlock(nil), f.blocks...), nil
}

func (f *fakeService) Assignments(context.Context) ([]models.Assignment, error) {
	return f.assignments, nil
}

func (f *fakeService) Events(context.Context) ([]models.CalendarEvent, error) {
	return f.events, nil
}

func (f *fakeService) CreateAssignment(_ context.Context, in service.AssignmentInput) (models.Assignment, service.Outcome, error) {
	f.record("create")
	f.mu.Lock()
	f.created = append(f.created, in)
	f.mu.Unlock()
	return models.Assignment{ID: "new", Title: in.Title}, service.Outcome{}, nil
}

func (f *fakeService) MoveBlock(_ context.Context, id string, start time.Time) (service.Outcome, error) {
	f.record("move:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, start)
	if f.moveOutcome != nil {
		return *f.moveOutcome, nil
	}
	for i := range f.blocks {
		if f.blocks[i].ID == id {
			d := f.blocks[i].Duration()
			f.blocks[i].Start = start
			f.blocks[i].End = start.Add(d)
			return service.Outcome{Accepted: []models.ScheduledBlock{f.blocks[i]}}, nil
		}
	}
	return service.Outcome{}, nil
}

func (f *fakeService) EditBlock(_ context.Context, id string, edit scheduler.BlockEdit) (service.Outcome, error) {
	f.record("edit:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return service.Outcome{}, nil
}

func (f *fakeService) CompleteBlock(_ context.Context, id string) (models.ScheduledBlock, error) {
	f.record("complete:" + id)
	return models.ScheduledBlock{ID: id, Status: models.BlockCompleted}, nil
}

func (f *fakeService) UncompleteBlock(_ context.Context, id string) (models.ScheduledBlock, error) {
	f.record("uncomplete:" + id)
	return models.ScheduledBlock{ID: id, Status: models.BlockPending}, nil
}

func (f *fakeService) DeleteBlock(_ context.Context, id string) (models.ScheduledBlock, error) {
	f.record("archive:" + id)
	return models.ScheduledBlock{ID: id, Status: models.BlockArchived}, nil
}

func (f *fakeService) Refresh(context.Context) (service.Outcome, error) {
	f.record("refresh")
	return service.Outcome{}, nil
}

func (f *fakeService) RegenerateAll(context.Context) (service.Outcome, error) {
	f.record("regenerate")
	return service.Outcome{}, nil
}

func (f *fakeService) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}
