package database

import (
	"context"

	"github.com/akyairhashvil/studyplan/internal/models"
)

// AssignmentRepository defines assignment persistence.
type AssignmentRepository interface {
	SaveAssignment(ctx context.Context, a models.Assignment) error
	GetAssignment(ctx context.Context, id string) (models.Assignment, error)
	ListAssignments(ctx context.Context) ([]models.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// BlockRepository defines scheduled block persistence.
type BlockRepository interface {
	ListBlocks(ctx context.Context, includeArchived bool) ([]models.ScheduledBlock, error)
	ListArchivedBlocks(ctx context.Context) ([]models.ScheduledBlock, error)
	GetBlock(ctx context.Context, id string) (models.ScheduledBlock, error)
	SaveBlock(ctx context.Context, b models.ScheduledBlock) error
	ApplyBlockChanges(ctx context.Context, changes BlockChanges) error
}

// EventRepository defines calendar event persistence.
type EventRepository interface {
	SaveEvent(ctx context.Context, e models.CalendarEvent) error
	ListEvents(ctx context.Context) ([]models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// AttemptRepository defines reschedule audit persistence.
type AttemptRepository interface {
	RecordAttempt(ctx context.Context, a models.RescheduleAttempt) error
	ListAttempts(ctx context.Context, blockID string) ([]models.RescheduleAttempt, error)
}

// SettingsRepository defines key/value state persistence.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, bool)
	SetSetting(ctx context.Context, key, value string) error
}

// Repository combines all repository interfaces.
//
//go:generate mockgen -destination=../service/mock_repository_test.go -package=service github.com/akyairhashvil/studyplan/internal/database Repository
type Repository interface {
	AssignmentRepository
	BlockRepository
	EventRepository
	AttemptRepository
	SettingsRepository
}

var _ Repository = (*Database)(nil)
