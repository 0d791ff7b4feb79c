package scheduler

import (
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
)

// BlockEdit carries the fields a user changed in the block editor. Nil
// fields are left untouched.
type BlockEdit struct {
	Title    *string
	Start    *time.Time
	Duration *time.Duration
	Locked   *bool
}

// touchesPlacement reports whether the edit is a direct human change to
// timing or pinning, which excludes the block from regeneration.
func (e BlockEdit) touchesPlacement() bool {
	return e.Start != nil || e.Duration != nil || e.Locked != nil
}

// EditResult is the outcome of a manual edit. On rejection Block holds the
// unchanged original so the caller can revert the view.
type EditResult struct {
	Block     models.ScheduledBlock
	Previous  models.ScheduledBlock
	Rejection *models.Rejection
}

// Accepted reports whether the edit was committed.
func (r EditResult) Accepted() bool {
	return r.Rejection == nil
}

// Edit applies a manual change to the block with the given id. Timing changes
// are re-validated against working hours and every other active block.
func (s *Scheduler) Edit(existing []models.ScheduledBlock, id string, edit BlockEdit) (EditResult, error) {
	idx := indexOf(existing, id)
	if idx < 0 {
		return EditResult{}, blockErr("edit", id, ErrBlockNotFound)
	}
	orig := existing[idx]
	if orig.Status == models.BlockArchived {
		return EditResult{}, blockErr("edit", id, ErrInvalidTransition)
	}
	if edit.Duration != nil && *edit.Duration <= 0 {
		return EditResult{}, blockErr("edit", id, ErrInvalidInterval)
	}

	updated := orig
	if edit.Title != nil {
		updated.Title = *edit.Title
	}
	if edit.Locked != nil {
		updated.Locked = *edit.Locked
	}
	if edit.Start != nil || edit.Duration != nil {
		dur := orig.Duration()
		if edit.Duration != nil {
			dur = *edit.Duration
		}
		if edit.Start != nil {
			updated.Start = *edit.Start
		}
		updated.End = updated.Start.Add(dur)

		placed, rej, err := s.PlaceAt(updated, existing, time.Time{})
		if err != nil {
			return EditResult{}, err
		}
		if rej != nil {
			return EditResult{Block: orig, Previous: orig, Rejection: rej}, nil
		}
		updated = placed
	}
	if edit.touchesPlacement() {
		updated.UserEdited = true
	}
	return EditResult{Block: updated, Previous: orig}, nil
}

// AddManual validates and creates a block not tied to any step.
func (s *Scheduler) AddManual(existing []models.ScheduledBlock, title string, start time.Time, dur time.Duration) (EditResult, error) {
	block := models.ScheduledBlock{
		ID:         s.newID(),
		Title:      title,
		Start:      start,
		End:        start.Add(dur),
		Status:     models.BlockPending,
		UserEdited: true,
	}
	placed, rej, err := s.PlaceAt(block, existing, time.Time{})
	if err != nil {
		return EditResult{}, err
	}
	if rej != nil {
		return EditResult{Rejection: rej}, nil
	}
	return EditResult{Block: placed}, nil
}
