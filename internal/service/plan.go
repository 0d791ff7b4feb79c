package service

import (
	"context"

	"github.com/akyairhashvil/studyplan/internal/database"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"go.uber.org/zap"
)

// planPass replans several assignments against one evolving schedule and
// commits every block change in a single transaction.
type planPass struct {
	s        *Service
	sched    *scheduler.Scheduler
	schedule []models.ScheduledBlock

	upserts  map[string]models.ScheduledBlock
	order    []string
	deletes  []string
	attempts []models.RescheduleAttempt
	out      Outcome
}

func (s *Service) newPass(ctx context.Context) (*planPass, error) {
	sched, err := s.scheduler(ctx)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListBlocks(ctx, false)
	if err != nil {
		return nil, err
	}
	return &planPass{
		s:        s,
		sched:    sched,
		schedule: blocks,
		upserts:  make(map[string]models.ScheduledBlock),
	}, nil
}

func (p *planPass) put(b models.ScheduledBlock) {
	if _, ok := p.upserts[b.ID]; !ok {
		p.order = append(p.order, b.ID)
	}
	p.upserts[b.ID] = b
}

func (p *planPass) remove(id string) {
	if _, ok := p.upserts[id]; ok {
		delete(p.upserts, id)
		for i, oid := range p.order {
			if oid == id {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
		return
	}
	p.deletes = append(p.deletes, id)
}

// replan regenerates a's blocks. A non-empty kind records an audit row for
// every machine block that moved or could no longer be placed.
func (p *planPass) replan(a models.Assignment, kind models.AttemptType) error {
	steps := p.s.planner.Generate(a)
	res, err := p.sched.Regenerate(a, steps, p.schedule)
	if err != nil {
		return err
	}

	previous := make(map[string]models.ScheduledBlock, len(res.Updated)+len(res.Removed))
	for _, b := range p.schedule {
		previous[b.ID] = b
	}
	for _, b := range res.Added {
		p.put(b)
	}
	for _, b := range res.Updated {
		p.put(b)
		if old, ok := previous[b.ID]; ok && kind != "" && moved(old, b) {
			p.attempts = append(p.attempts, p.s.attempt(old, kind, &b, ""))
		}
	}
	rejectedBy := make(map[string]models.Rejection, len(res.Rejected))
	for _, r := range res.Rejected {
		rejectedBy[r.StepID] = r
	}
	for _, b := range res.Removed {
		p.remove(b.ID)
		if r, ok := rejectedBy[b.StepID]; ok && kind != "" {
			p.attempts = append(p.attempts, p.s.attempt(b, kind, nil, r.Message()))
		}
	}

	p.schedule = res.Schedule
	p.out.Accepted = append(p.out.Accepted, res.Accepted...)
	p.out.Rejected = append(p.out.Rejected, res.Rejected...)
	p.s.log.Info("assignment planned",
		zap.String("assignment", a.ID),
		zap.String("plan_key", a.PlanKey()),
		zap.Int("steps", len(steps)),
		zap.Int("added", len(res.Added)),
		zap.Int("updated", len(res.Updated)),
		zap.Int("removed", len(res.Removed)),
		zap.Int("rejected", len(res.Rejected)))
	return nil
}

func (p *planPass) commit(ctx context.Context, op string) (Outcome, error) {
	changes := database.BlockChanges{Delete: p.deletes}
	for _, id := range p.order {
		changes.Upsert = append(changes.Upsert, p.upserts[id])
	}
	if err := p.s.repo.ApplyBlockChanges(ctx, changes); err != nil {
		return Outcome{}, err
	}
	for _, a := range p.attempts {
		if err := p.s.repo.RecordAttempt(ctx, a); err != nil {
			p.s.log.Error("record attempt", zap.String("block", a.BlockID), zap.Error(err))
		}
	}
	p.s.logRejections(op, p.out.Rejected)
	scheduler.SortBlocks(p.out.Accepted)
	return p.out, nil
}

// planState reports whether a has any machine blocks and whether they are
// out of date relative to its current plan.
func planState(a models.Assignment, steps []models.Step, schedule []models.ScheduledBlock) (hasPlan, stale bool) {
	covered := make(map[int]bool)
	key := a.PlanKey()
	for _, b := range schedule {
		if b.AssignmentID != a.ID || b.IsManual() || !b.IsActive() {
			continue
		}
		hasPlan = true
		covered[b.StepIndex] = true
		if b.Replaceable() && b.PlanKey != key {
			stale = true
		}
	}
	for _, st := range steps {
		if !covered[st.Index] {
			stale = true
		}
	}
	return hasPlan, stale
}

func moved(old, b models.ScheduledBlock) bool {
	return !old.Start.Equal(b.Start) || !old.End.Equal(b.End)
}

func (s *Service) attempt(old models.ScheduledBlock, kind models.AttemptType, placed *models.ScheduledBlock, failure string) models.RescheduleAttempt {
	at := models.RescheduleAttempt{
		ID:            s.newID(),
		BlockID:       old.ID,
		AttemptType:   kind,
		AttemptedAt:   s.now(),
		OldStart:      old.Start,
		OldEnd:        old.End,
		Success:       placed != nil,
		FailureReason: failure,
	}
	if placed != nil {
		start, end := placed.Start, placed.End
		at.NewStart = &start
		at.NewEnd = &end
	}
	return at
}
