package testutil

import (
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
)

// Monday is a fixed reference date used across tests.
var Monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// At returns Monday shifted by days at the given wall clock time.
func At(days, hour, minute int) time.Time {
	return Monday.AddDate(0, 0, days).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// AssignmentBuilder provides fluent API for creating test assignments.
type AssignmentBuilder struct {
	assignment models.Assignment
}

func NewAssignment() *AssignmentBuilder {
	return &AssignmentBuilder{
		assignment: models.Assignment{
			ID:               "asg-1",
			Title:            "Test Assignment",
			Category:         models.CategoryHomework,
			Due:              At(7, 23, 0),
			EstimatedMinutes: 90,
			CreatedAt:        Monday,
			UpdatedAt:        Monday,
		},
	}
}

func (b *AssignmentBuilder) WithID(id string) *AssignmentBuilder {
	b.assignment.ID = id
	return b
}

func (b *AssignmentBuilder) WithTitle(title string) *AssignmentBuilder {
	b.assignment.Title = title
	return b
}

func (b *AssignmentBuilder) WithCategory(c models.Category) *AssignmentBuilder {
	b.assignment.Category = c
	return b
}

func (b *AssignmentBuilder) WithMinutes(m int) *AssignmentBuilder {
	b.assignment.EstimatedMinutes = m
	return b
}

func (b *AssignmentBuilder) WithDue(due time.Time) *AssignmentBuilder {
	b.assignment.Due = due
	return b
}

func (b *AssignmentBuilder) Locked() *AssignmentBuilder {
	b.assignment.Locked = true
	return b
}

func (b *AssignmentBuilder) Build() models.Assignment {
	return b.assignment
}

// BlockBuilder provides fluent API for creating test scheduled blocks.
type BlockBuilder struct {
	block models.ScheduledBlock
}

func NewBlock(id string) *BlockBuilder {
	start := At(0, 14, 0)
	return &BlockBuilder{
		block: models.ScheduledBlock{
			ID:     id,
			Title:  "Block " + id,
			Start:  start,
			End:    start.Add(time.Hour),
			Status: models.BlockPending,
		},
	}
}

func (b *BlockBuilder) WithTitle(title string) *BlockBuilder {
	b.block.Title = title
	return b
}

func (b *BlockBuilder) At(start time.Time, d time.Duration) *BlockBuilder {
	b.block.Start = start
	b.block.End = start.Add(d)
	return b
}

// ForStep links the block to the index-th step of an assignment.
func (b *BlockBuilder) ForStep(assignmentID string, index, count int) *BlockBuilder {
	b.block.AssignmentID = assignmentID
	b.block.StepID = models.StepID(assignmentID, index)
	b.block.StepIndex = index
	b.block.StepCount = count
	return b
}

func (b *BlockBuilder) WithPlanKey(key string) *BlockBuilder {
	b.block.PlanKey = key
	return b
}

func (b *BlockBuilder) UserEdited() *BlockBuilder {
	b.block.UserEdited = true
	return b
}

func (b *BlockBuilder) Locked() *BlockBuilder {
	b.block.Locked = true
	return b
}

func (b *BlockBuilder) WithStatus(s models.BlockStatus) *BlockBuilder {
	b.block.Status = s
	return b
}

func (b *BlockBuilder) Build() models.ScheduledBlock {
	return b.block
}
