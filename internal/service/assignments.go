package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/config"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"go.uber.org/zap"
)

// AssignmentInput describes a new assignment.
type AssignmentInput struct {
	Title            string
	Category         models.Category
	Due              time.Time
	EstimatedMinutes int
	Locked           bool
}

// AssignmentPatch carries changed assignment fields. Nil fields are kept.
type AssignmentPatch struct {
	Title            *string
	Category         *models.Category
	Due              *time.Time
	EstimatedMinutes *int
	Locked           *bool
}

func validateAssignment(a models.Assignment) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(a.Title) > config.MaxTitleLength {
		return fmt.Errorf("%w: title longer than %d characters", ErrInvalidInput, config.MaxTitleLength)
	}
	if !a.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, a.Category)
	}
	if a.Due.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidInput)
	}
	return nil
}

// CreateAssignment stores a new assignment and schedules its plan.
func (s *Service) CreateAssignment(ctx context.Context, in AssignmentInput) (models.Assignment, Outcome, error) {
	type result struct {
		a   models.Assignment
		out Outcome
	}
	r, err := call(s, ctx, func(ctx context.Context) (result, error) {
		now := s.now()
		a := models.Assignment{
			ID:               s.newID(),
			Title:            strings.TrimSpace(in.Title),
			Category:         in.Category,
			Due:              in.Due,
			EstimatedMinutes: in.EstimatedMinutes,
			Locked:           in.Locked,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := validateAssignment(a); err != nil {
			return result{}, err
		}
		if err := s.repo.SaveAssignment(ctx, a); err != nil {
			return result{}, err
		}
		s.log.Info("assignment created",
			zap.String("assignment", a.ID),
			zap.String("category", string(a.Category)),
			zap.Int("minutes", a.EstimatedMinutes),
			zap.Time("due", a.Due))

		pass, err := s.newPass(ctx)
		if err != nil {
			return result{a: a}, err
		}
		if err := pass.replan(a, ""); err != nil {
			return result{a: a}, err
		}
		out, err := pass.commit(ctx, "create")
		return result{a: a, out: out}, err
	})
	return r.a, r.out, err
}

// UpdateAssignment applies patch and replans when the plan inputs changed.
// Locked assignments keep their existing blocks.
func (s *Service) UpdateAssignment(ctx context.Context, id string, patch AssignmentPatch) (models.Assignment, Outcome, error) {
	type result struct {
		a   models.Assignment
		out Outcome
	}
	r, err := call(s, ctx, func(ctx context.Context) (result, error) {
		a, err := s.repo.GetAssignment(ctx, id)
		if err != nil {
			return result{}, err
		}
		oldKey := a.PlanKey()
		if patch.Title != nil {
			a.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Category != nil {
			a.Category = *patch.Category
		}
		if patch.Due != nil {
			a.Due = *patch.Due
		}
		if patch.EstimatedMinutes != nil {
			a.EstimatedMinutes = *patch.EstimatedMinutes
		}
		if patch.Locked != nil {
			a.Locked = *patch.Locked
		}
		if err := validateAssignment(a); err != nil {
			return result{}, err
		}
		a.UpdatedAt = s.now()
		if err := s.repo.SaveAssignment(ctx, a); err != nil {
			return result{}, err
		}
		if a.Locked || a.PlanKey() == oldKey {
			return result{a: a}, nil
		}

		pass, err := s.newPass(ctx)
		if err != nil {
			return result{a: a}, err
		}
		if err := pass.replan(a, ""); err != nil {
			return result{a: a}, err
		}
		out, err := pass.commit(ctx, "update")
		return result{a: a, out: out}, err
	})
	return r.a, r.out, err
}

// DeleteAssignment removes the assignment and archives its active blocks.
func (s *Service) DeleteAssignment(ctx context.Context, id string) ([]models.ScheduledBlock, error) {
	return call(s, ctx, func(ctx context.Context) ([]models.ScheduledBlock, error) {
		if _, err := s.repo.GetAssignment(ctx, id); err != nil {
			return nil, err
		}
		blocks, err := s.repo.ListBlocks(ctx, false)
		if err != nil {
			return nil, err
		}
		archived := scheduler.ArchiveAssignment(blocks, id, s.now())
		changes := blockUpserts(archived)
		changes.DeleteAssignments = []string{id}
		if err := s.repo.ApplyBlockChanges(ctx, changes); err != nil {
			return nil, err
		}
		s.log.Info("assignment deleted", zap.String("assignment", id), zap.Int("archived", len(archived)))
		return archived, nil
	})
}

// Assignments lists every assignment ordered by due date.
func (s *Service) Assignments(ctx context.Context) ([]models.Assignment, error) {
	return call(s, ctx, func(ctx context.Context) ([]models.Assignment, error) {
		return s.repo.ListAssignments(ctx)
	})
}

// Plan returns the steps the planner produces for an assignment right now.
func (s *Service) Plan(ctx context.Context, id string) ([]models.Step, error) {
	return call(s, ctx, func(ctx context.Context) ([]models.Step, error) {
		a, err := s.repo.GetAssignment(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.planner.Generate(a), nil
	})
}

// Refresh plans assignments that have no blocks yet and replans those whose
// plan is stale. Locked assignments are only planned when they have no
// blocks. Assignments already past due are left alone.
func (s *Service) Refresh(ctx context.Context) (Outcome, error) {
	return call(s, ctx, func(ctx context.Context) (Outcome, error) {
		return s.replanAll(ctx, false)
	})
}

// RegenerateAll replans every open assignment, keeping user-edited, locked
// and completed blocks in place.
func (s *Service) RegenerateAll(ctx context.Context) (Outcome, error) {
	return call(s, ctx, func(ctx context.Context) (Outcome, error) {
		return s.replanAll(ctx, true)
	})
}

func (s *Service) replanAll(ctx context.Context, force bool) (Outcome, error) {
	assignments, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return Outcome{}, err
	}
	pass, err := s.newPass(ctx)
	if err != nil {
		return Outcome{}, err
	}
	now := s.now()
	kind := models.AttemptType("")
	op := "refresh"
	if force {
		kind = models.AttemptRegenerate
		op = "regenerate"
	}
	for _, a := range assignments {
		if !a.Due.After(now) {
			continue
		}
		hasPlan, stale := planState(a, s.planner.Generate(a), pass.schedule)
		switch {
		case !hasPlan:
		case a.Locked:
			continue
		case !force && !stale:
			continue
		}
		if err := pass.replan(a, kind); err != nil {
			return Outcome{}, err
		}
	}
	out, err := pass.commit(ctx, op)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.repo.SetSetting(ctx, config.SettingLastRefresh, now.UTC().Format(time.RFC3339)); err != nil {
		s.log.Warn("store last refresh", zap.Error(err))
	}
	return out, nil
}
