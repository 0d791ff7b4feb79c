package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/database"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"go.uber.org/zap"
)

func blockUpserts(blocks []models.ScheduledBlock) database.BlockChanges {
	return database.BlockChanges{Upsert: blocks}
}

// EditBlock applies a manual change. A rejected edit leaves the store
// untouched and comes back in Outcome.Rejected.
func (s *Service) EditBlock(ctx context.Context, id string, edit scheduler.BlockEdit) (Outcome, error) {
	return call(s, ctx, func(ctx context.Context) (Outcome, error) {
		return s.edit(ctx, id, edit)
	})
}

// MoveBlock is a drag release: the block keeps its duration and starts at
// the snapped start.
func (s *Service) MoveBlock(ctx context.Context, id string, start time.Time) (Outcome, error) {
	return call(s, ctx, func(ctx context.Context) (Outcome, error) {
		return s.edit(ctx, id, scheduler.BlockEdit{Start: &start})
	})
}

func (s *Service) edit(ctx context.Context, id string, edit scheduler.BlockEdit) (Outcome, error) {
	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		if title == "" {
			return Outcome{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		edit.Title = &title
	}
	sched, err := s.scheduler(ctx)
	if err != nil {
		return Outcome{}, err
	}
	blocks, err := s.repo.ListBlocks(ctx, true)
	if err != nil {
		return Outcome{}, err
	}
	res, err := sched.Edit(blocks, id, edit)
	if err != nil {
		return Outcome{}, err
	}
	timing := edit.Start != nil || edit.Duration != nil

	if !res.Accepted() {
		s.logRejections("edit", []models.Rejection{*res.Rejection})
		if timing {
			s.recordAttempt(ctx, s.attempt(res.Previous, models.AttemptManual, nil, res.Rejection.Message()))
		}
		return Outcome{Rejected: []models.Rejection{*res.Rejection}}, nil
	}
	if err := s.repo.SaveBlock(ctx, res.Block); err != nil {
		return Outcome{}, err
	}
	if timing && moved(res.Previous, res.Block) {
		placed := res.Block
		s.recordAttempt(ctx, s.attempt(res.Previous, models.AttemptManual, &placed, ""))
	}
	s.log.Info("block edited",
		zap.String("block", id),
		zap.Time("start", res.Block.Start),
		zap.Duration("duration", res.Block.Duration()),
		zap.Bool("user_edited", res.Block.UserEdited))
	return Outcome{Accepted: []models.ScheduledBlock{res.Block}}, nil
}

// AddManualBlock places a block that belongs to no assignment.
func (s *Service) AddManualBlock(ctx context.Context, title string, start time.Time, dur time.Duration) (Outcome, error) {
	return call(s, ctx, func(ctx context.Context) (Outcome, error) {
		title = strings.TrimSpace(title)
		if title == "" {
			return Outcome{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		if dur <= 0 {
			return Outcome{}, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
		}
		sched, err := s.scheduler(ctx)
		if err != nil {
			return Outcome{}, err
		}
		blocks, err := s.repo.ListBlocks(ctx, false)
		if err != nil {
			return Outcome{}, err
		}
		res, err := sched.AddManual(blocks, title, start, dur)
		if err != nil {
			return Outcome{}, err
		}
		if !res.Accepted() {
			s.logRejections("add", []models.Rejection{*res.Rejection})
			return Outcome{Rejected: []models.Rejection{*res.Rejection}}, nil
		}
		if err := s.repo.SaveBlock(ctx, res.Block); err != nil {
			return Outcome{}, err
		}
		s.log.Info("manual block added", zap.String("block", res.Block.ID), zap.Time("start", res.Block.Start))
		return Outcome{Accepted: []models.ScheduledBlock{res.Block}}, nil
	})
}

// CompleteBlock marks a pending block done.
func (s *Service) CompleteBlock(ctx context.Context, id string) (models.ScheduledBlock, error) {
	return s.transition(ctx, id, "complete", func(b models.ScheduledBlock) (models.ScheduledBlock, error) {
		return scheduler.Complete(b, s.now())
	})
}

// UncompleteBlock reverts a completed block to pending.
func (s *Service) UncompleteBlock(ctx context.Context, id string) (models.ScheduledBlock, error) {
	return s.transition(ctx, id, "uncomplete", scheduler.Uncomplete)
}

// DeleteBlock archives a block. It stays retrievable through Archived.
func (s *Service) DeleteBlock(ctx context.Context, id string) (models.ScheduledBlock, error) {
	return s.transition(ctx, id, "archive", func(b models.ScheduledBlock) (models.ScheduledBlock, error) {
		return scheduler.Archive(b, s.now())
	})
}

func (s *Service) transition(ctx context.Context, id, op string, fn func(models.ScheduledBlock) (models.ScheduledBlock, error)) (models.ScheduledBlock, error) {
	return call(s, ctx, func(ctx context.Context) (models.ScheduledBlock, error) {
		b, err := s.repo.GetBlock(ctx, id)
		if err != nil {
			return models.ScheduledBlock{}, err
		}
		next, err := fn(b)
		if err != nil {
			return b, err
		}
		if err := s.repo.SaveBlock(ctx, next); err != nil {
			return b, err
		}
		s.log.Info("block "+op, zap.String("block", id), zap.String("status", string(next.Status)))
		return next, nil
	})
}

// AddCalendarEvent stores busy time and replans assignments whose machine
// blocks now collide with it. Pinned blocks that collide are reported as
// rejections and left in place.
func (s *Service) AddCalendarEvent(ctx context.Context, title string, start, end time.Time) (models.CalendarEvent, Outcome, error) {
	type result struct {
		ev  models.CalendarEvent
		out Outcome
	}
	r, err := call(s, ctx, func(ctx context.Context) (result, error) {
		ev := models.CalendarEvent{
			ID:        s.newID(),
			Title:     strings.TrimSpace(title),
			Start:     start,
			End:       end,
			CreatedAt: s.now(),
		}
		if ev.Title == "" {
			return result{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		if !ev.Interval().Valid() {
			return result{}, fmt.Errorf("%w: %w", ErrInvalidInput, scheduler.ErrInvalidInterval)
		}
		if err := s.repo.SaveEvent(ctx, ev); err != nil {
			return result{}, err
		}
		s.log.Info("calendar event added", zap.String("event", ev.ID), zap.Time("start", start), zap.Time("end", end))

		pass, err := s.newPass(ctx)
		if err != nil {
			return result{ev: ev}, err
		}
		var pinned []models.Rejection
		affected := make(map[string]bool)
		for _, b := range pass.schedule {
			if !b.Interval().Overlaps(ev.Interval()) {
				continue
			}
			if b.Replaceable() {
				affected[b.AssignmentID] = true
				continue
			}
			if b.Status == models.BlockPending {
				pinned = append(pinned, models.Rejection{
					StepID:       b.StepID,
					BlockID:      b.ID,
					AssignmentID: b.AssignmentID,
					Title:        b.Title,
					Reason:       models.ReasonConflict,
					Detail:       "overlaps " + ev.Title,
					Start:        b.Start,
					End:          b.End,
				})
			}
		}
		if len(affected) > 0 {
			assignments, err := s.repo.ListAssignments(ctx)
			if err != nil {
				return result{ev: ev}, err
			}
			for _, a := range assignments {
				if !affected[a.ID] {
					continue
				}
				if err := pass.replan(a, models.AttemptAutoConflict); err != nil {
					return result{ev: ev}, err
				}
			}
		}
		pass.out.Rejected = append(pass.out.Rejected, pinned...)
		out, err := pass.commit(ctx, "event")
		return result{ev: ev, out: out}, err
	})
	return r.ev, r.out, err
}

// Events lists calendar events.
func (s *Service) Events(ctx context.Context) ([]models.CalendarEvent, error) {
	return call(s, ctx, func(ctx context.Context) ([]models.CalendarEvent, error) {
		return s.repo.ListEvents(ctx)
	})
}

// Schedule returns the active blocks ordered by start.
func (s *Service) Schedule(ctx context.Context) ([]models.ScheduledBlock, error) {
	return call(s, ctx, func(ctx context.Context) ([]models.ScheduledBlock, error) {
		return s.repo.ListBlocks(ctx, false)
	})
}

// Archived returns retired blocks.
func (s *Service) Archived(ctx context.Context) ([]models.ScheduledBlock, error) {
	return call(s, ctx, func(ctx context.Context) ([]models.ScheduledBlock, error) {
		return s.repo.ListArchivedBlocks(ctx)
	})
}

// Attempts returns the reschedule audit trail. An empty blockID lists all.
func (s *Service) Attempts(ctx context.Context, blockID string) ([]models.RescheduleAttempt, error) {
	return call(s, ctx, func(ctx context.Context) ([]models.RescheduleAttempt, error) {
		return s.repo.ListAttempts(ctx, blockID)
	})
}

func (s *Service) recordAttempt(ctx context.Context, a models.RescheduleAttempt) {
	if err := s.repo.RecordAttempt(ctx, a); err != nil {
		s.log.Error("record attempt", zap.String("block", a.BlockID), zap.Error(err))
	}
}
