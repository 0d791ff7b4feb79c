package scheduler

import (
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
)

// Complete marks a pending block as done.
func Complete(b models.ScheduledBlock, at time.Time) (models.ScheduledBlock, error) {
	if b.Status != models.BlockPending {
		return b, blockErr("complete", b.ID, ErrInvalidTransition)
	}
	b.Status = models.BlockCompleted
	b.CompletedAt = &at
	return b, nil
}

// Uncomplete reverts a completed block to pending.
func Uncomplete(b models.ScheduledBlock) (models.ScheduledBlock, error) {
	if b.Status != models.BlockCompleted {
		return b, blockErr("uncomplete", b.ID, ErrInvalidTransition)
	}
	b.Status = models.BlockPending
	b.CompletedAt = nil
	return b, nil
}

// Archive retires a block. Archived blocks stay in storage for audit but no
// longer occupy time.
func Archive(b models.ScheduledBlock, at time.Time) (models.ScheduledBlock, error) {
	if b.Status == models.BlockArchived {
		return b, blockErr("archive", b.ID, ErrInvalidTransition)
	}
	b.Status = models.BlockArchived
	b.ArchivedAt = &at
	return b, nil
}

// ArchiveAssignment archives every active block that belongs to assignmentID.
func ArchiveAssignment(schedule []models.ScheduledBlock, assignmentID string, at time.Time) []models.ScheduledBlock {
	var out []models.ScheduledBlock
	for _, b := range schedule {
		if b.AssignmentID != assignmentID || !b.IsActive() {
			continue
		}
		archived, err := Archive(b, at)
		if err == nil {
			out = append(out, archived)
		}
	}
	return out
}
