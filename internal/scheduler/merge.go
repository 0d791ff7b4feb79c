package scheduler

import (
	"github.com/akyairhashvil/studyplan/internal/models"
)

// MergeResult is the diff between the current schedule and a candidate set.
type MergeResult struct {
	Schedule []models.ScheduledBlock
	Added    []models.ScheduledBlock
	Updated  []models.ScheduledBlock
	Removed  []models.ScheduledBlock
}

// Changed reports whether the merge altered anything.
func (m MergeResult) Changed() bool {
	return len(m.Added)+len(m.Updated)+len(m.Removed) > 0
}

// Merge replaces the replaceable blocks of one assignment with candidates,
// keyed by block ID. User-edited, locked, completed, archived and manual
// blocks are carried over untouched, as are blocks of other assignments.
func Merge(current, candidates []models.ScheduledBlock, assignmentID string) MergeResult {
	pending := make(map[string]models.ScheduledBlock, len(candidates))
	for _, c := range candidates {
		pending[c.ID] = c
	}

	var res MergeResult
	for _, b := range current {
		if b.AssignmentID != assignmentID || !b.Replaceable() {
			delete(pending, b.ID)
			res.Schedule = append(res.Schedule, b)
			continue
		}
		c, ok := pending[b.ID]
		if !ok {
			res.Removed = append(res.Removed, b)
			continue
		}
		delete(pending, b.ID)
		if !sameBlock(b, c) {
			res.Updated = append(res.Updated, c)
		}
		res.Schedule = append(res.Schedule, c)
	}
	for _, c := range candidates {
		if _, ok := pending[c.ID]; !ok {
			continue
		}
		res.Added = append(res.Added, c)
		res.Schedule = append(res.Schedule, c)
	}
	SortBlocks(res.Schedule)
	return res
}

func sameBlock(a, b models.ScheduledBlock) bool {
	return a.ID == b.ID &&
		a.AssignmentID == b.AssignmentID &&
		a.StepID == b.StepID &&
		a.StepIndex == b.StepIndex &&
		a.StepCount == b.StepCount &&
		a.Title == b.Title &&
		a.Category == b.Category &&
		a.Start.Equal(b.Start) &&
		a.End.Equal(b.End) &&
		a.Status == b.Status &&
		a.Locked == b.Locked &&
		a.UserEdited == b.UserEdited &&
		a.PlanKey == b.PlanKey
}

// RegenerateResult is the outcome of replanning one assignment.
type RegenerateResult struct {
	MergeResult
	Accepted []models.ScheduledBlock
	Rejected []models.Rejection
}

// Regenerate re-places the steps of assignment a. Blocks the user edited,
// locked or completed stay where they are and cover their step index; the
// remaining steps are placed against the schedule without the assignment's
// own replaceable blocks, and reuse those blocks' IDs by step index.
func (s *Scheduler) Regenerate(a models.Assignment, steps []models.Step, schedule []models.ScheduledBlock) (RegenerateResult, error) {
	covered := make(map[int]bool)
	reuse := make(map[int]string)
	others := make([]models.ScheduledBlock, 0, len(schedule))
	for _, b := range schedule {
		if b.AssignmentID == a.ID && b.IsActive() {
			if b.Replaceable() {
				reuse[b.StepIndex] = b.ID
				continue
			}
			if !b.IsManual() {
				covered[b.StepIndex] = true
			}
		}
		others = append(others, b)
	}

	toPlace := make([]models.Step, 0, len(steps))
	for _, st := range steps {
		if !covered[st.Index] {
			toPlace = append(toPlace, st)
		}
	}

	placed, err := s.Place(toPlace, others)
	if err != nil {
		return RegenerateResult{}, err
	}
	for i := range placed.Accepted {
		if id, ok := reuse[placed.Accepted[i].StepIndex]; ok {
			placed.Accepted[i].ID = id
		}
	}
	return RegenerateResult{
		MergeResult: Merge(schedule, placed.Accepted, a.ID),
		Accepted:    placed.Accepted,
		Rejected:    placed.Rejected,
	}, nil
}
