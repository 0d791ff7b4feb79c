// Package scheduler places study steps and manual entries on a time grid.
//
// Every placement is checked against hard constraints: no overlap with other
// active blocks or calendar events, containment in the working-hours window,
// snap-to-grid, and the due-date ceiling of the source step. Violations are
// returned as rejections with a reason code; only structurally invalid input
// (non-positive durations, unknown blocks) is reported as an error.
//
// A Scheduler never owns the schedule. Callers pass the current blocks in and
// persist what comes back, serializing calls against the same schedule.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/google/uuid"
)

// searchLimit bounds the slot search for a single step.
const searchLimit = 100000

// Scheduler validates and produces placements under one set of constraints.
type Scheduler struct {
	c     Constraints
	newID func() string
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithIDGenerator overrides how new block identifiers are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New validates c and returns a scheduler bound to it.
func New(c Constraints, opts ...Option) (*Scheduler, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{c: c, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Constraints returns the constraints the scheduler was built with.
func (s *Scheduler) Constraints() Constraints {
	return s.c
}

// Result is the outcome of an automatic placement pass.
type Result struct {
	Accepted []models.ScheduledBlock
	Rejected []models.Rejection
}

type occupant struct {
	id    string
	title string
	span  models.Interval
}

// occupied collects the intervals that candidates must avoid, skipping the
// block identified by exclude.
func (s *Scheduler) occupied(existing []models.ScheduledBlock, exclude string) []occupant {
	out := make([]occupant, 0, len(existing)+len(s.c.Busy))
	for _, b := range existing {
		if !b.IsActive() || (exclude != "" && b.ID == exclude) {
			continue
		}
		out = append(out, occupant{id: b.ID, title: b.Title, span: b.Interval()})
	}
	for _, e := range s.c.Busy {
		out = append(out, occupant{id: e.ID, title: e.Title, span: e.Interval()})
	}
	return out
}

// conflict returns the overlapping occupant that ends last.
func conflict(occ []occupant, span models.Interval) (occupant, bool) {
	var hit occupant
	found := false
	for _, o := range occ {
		if !o.span.Overlaps(span) {
			continue
		}
		if !found || o.span.End.After(hit.span.End) {
			hit = o
			found = true
		}
	}
	return hit, found
}

// Place schedules steps in order, first-fit on the grid. Each step starts no
// earlier than its planned time, the NotBefore bound and the end of the
// previous step of the same assignment, and must end by its due date.
func (s *Scheduler) Place(steps []models.Step, existing []models.ScheduledBlock) (Result, error) {
	for _, st := range steps {
		if st.Minutes <= 0 {
			return Result{}, stepErr("place", st.ID, ErrInvalidInterval)
		}
	}

	occ := s.occupied(existing, "")
	lastEnd := make(map[string]time.Time)
	var res Result
	for _, st := range steps {
		from := st.PlannedAt
		if from.Before(s.c.NotBefore) {
			from = s.c.NotBefore
		}
		if prev, ok := lastEnd[st.AssignmentID]; ok && from.Before(prev) {
			from = prev
		}
		block, rej := s.findSlot(st, from, occ)
		if rej != nil {
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		res.Accepted = append(res.Accepted, block)
		occ = append(occ, occupant{id: block.ID, title: block.Title, span: block.Interval()})
		lastEnd[st.AssignmentID] = block.End
	}
	return res, nil
}

func (s *Scheduler) findSlot(st models.Step, from time.Time, occ []occupant) (models.ScheduledBlock, *models.Rejection) {
	dur := st.Duration()
	first := s.c.snapUp(from)
	reject := func(reason models.ReasonCode, detail string) *models.Rejection {
		return &models.Rejection{
			StepID:       st.ID,
			AssignmentID: st.AssignmentID,
			Title:        st.Title,
			Reason:       reason,
			Detail:       detail,
			Start:        first,
			End:          first.Add(dur),
		}
	}
	if dur > s.c.WorkdayLength() {
		return models.ScheduledBlock{}, reject(models.ReasonOutsideHours,
			fmt.Sprintf("%d min session exceeds %s", st.Minutes, s.c.hoursLabel()))
	}

	var blockedBy string
	cand := first
	for i := 0; i < searchLimit; i++ {
		end := cand.Add(dur)
		if !st.Due.IsZero() && end.After(st.Due) {
			break
		}
		ws, we := s.c.Workday(cand)
		if cand.Before(ws) {
			cand = s.c.snapUp(ws)
			continue
		}
		if end.After(we) {
			next, _ := s.c.Workday(cand.In(s.c.loc()).AddDate(0, 0, 1))
			cand = s.c.snapUp(next)
			continue
		}
		span := models.Interval{Start: cand, End: end}
		if hit, ok := conflict(occ, span); ok {
			blockedBy = hit.title
			cand = s.c.snapUp(hit.span.End)
			continue
		}
		return models.ScheduledBlock{
			ID:           s.newID(),
			AssignmentID: st.AssignmentID,
			StepID:       st.ID,
			StepIndex:    st.Index,
			StepCount:    st.Count,
			Title:        st.Title,
			Category:     st.Category,
			Start:        cand,
			End:          end,
			Status:       models.BlockPending,
			PlanKey:      st.PlanKey,
		}, nil
	}
	if blockedBy != "" {
		return models.ScheduledBlock{}, reject(models.ReasonConflict, "no free slot before due, last blocked by "+blockedBy)
	}
	return models.ScheduledBlock{}, reject(models.ReasonPastDue, "due "+st.Due.In(s.c.loc()).Format("Mon Jan 2 15:04"))
}

// PlaceAt validates an explicit candidate such as a drag release. The start
// is snapped first; the block keeps its duration. A non-zero ceiling rejects
// placements ending after it. The returned block is only valid when the
// rejection is nil.
func (s *Scheduler) PlaceAt(block models.ScheduledBlock, existing []models.ScheduledBlock, ceiling time.Time) (models.ScheduledBlock, *models.Rejection, error) {
	if !block.Interval().Valid() {
		return models.ScheduledBlock{}, nil, blockErr("place", block.ID, ErrInvalidInterval)
	}
	dur := block.Duration()
	block.Start = s.c.Snap(block.Start)
	block.End = block.Start.Add(dur)

	reject := func(reason models.ReasonCode, detail string) *models.Rejection {
		return &models.Rejection{
			StepID:       block.StepID,
			BlockID:      block.ID,
			AssignmentID: block.AssignmentID,
			Title:        block.Title,
			Reason:       reason,
			Detail:       detail,
			Start:        block.Start,
			End:          block.End,
		}
	}
	if !s.c.WithinHours(block.Start, block.End) {
		return models.ScheduledBlock{}, reject(models.ReasonOutsideHours, s.c.hoursLabel()), nil
	}
	if hit, ok := conflict(s.occupied(existing, block.ID), block.Interval()); ok {
		return models.ScheduledBlock{}, reject(models.ReasonConflict, "overlaps "+hit.title), nil
	}
	if !ceiling.IsZero() && block.End.After(ceiling) {
		return models.ScheduledBlock{}, reject(models.ReasonPastDue, "due "+ceiling.In(s.c.loc()).Format("Mon Jan 2 15:04")), nil
	}
	return block, nil, nil
}

// SortBlocks orders blocks by start time, then identifier.
func SortBlocks(blocks []models.ScheduledBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if !blocks[i].Start.Equal(blocks[j].Start) {
			return blocks[i].Start.Before(blocks[j].Start)
		}
		return blocks[i].ID < blocks[j].ID
	})
}

func indexOf(blocks []models.ScheduledBlock, id string) int {
	for i, b := range blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}
