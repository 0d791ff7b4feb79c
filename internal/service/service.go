// Package service coordinates planning, scheduling and persistence.
//
// A Service owns one goroutine that executes every call in arrival order, so
// the read-modify-write cycle of a schedule change never interleaves with
// another. The core planner and scheduler stay pure; this package feeds them
// the stored schedule and writes back what they accept.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akyairhashvil/studyplan/internal/config"
	"github.com/akyairhashvil/studyplan/internal/database"
	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/planner"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrClosed is returned for calls made after Close.
	ErrClosed = errors.New("service closed")
	// ErrInvalidInput marks caller mistakes such as an empty title.
	ErrInvalidInput = errors.New("invalid input")
)

// Outcome reports what a call placed and what it could not place.
type Outcome struct {
	Accepted []models.ScheduledBlock
	Rejected []models.Rejection
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how identifiers are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

type request struct {
	ctx  context.Context
	fn   func(ctx context.Context)
	done chan struct{}
}

// Service is the single writer for a schedule store.
type Service struct {
	repo     database.Repository
	settings *config.Settings
	planner  planner.Planner
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	reqs   chan request
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// New starts a service over repo. Call Close to stop its goroutine.
func New(repo database.Repository, settings *config.Settings, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("service: nil repository")
	}
	if settings == nil {
		settings = config.Default()
	}
	if errs := settings.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}
	s := &Service{
		repo:     repo,
		settings: settings,
		planner:  planner.New(settings.Rules()),
		log:      zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
		reqs:     make(chan request),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s, nil
}

func (s *Service) run() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		case req := <-s.reqs:
			req.fn(req.ctx)
			close(req.done)
		}
	}
}

// Close stops the service goroutine and waits for it to exit. It does not
// close the repository.
func (s *Service) Close() {
	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.log.Debug("service stopped")
	})
}

// exec runs fn on the service goroutine and waits for it to finish.
func (s *Service) exec(ctx context.Context, fn func(ctx context.Context)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req := request{ctx: ctx, fn: fn, done: make(chan struct{})}
	select {
	case <-s.stopCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case s.reqs <- req:
	}
	<-req.done
	return nil
}

func call[T any](s *Service, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	var err error
	if xerr := s.exec(ctx, func(ctx context.Context) {
		out, err = fn(ctx)
	}); xerr != nil {
		return out, xerr
	}
	return out, err
}

// Settings returns the configuration the service was built with.
func (s *Service) Settings() *config.Settings {
	return s.settings
}

// scheduler builds a scheduler for the current instant and calendar.
func (s *Service) scheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.settings.Constraints(s.now(), events)
	if err != nil {
		return nil, err
	}
	return scheduler.New(c, scheduler.WithIDGenerator(s.newID))
}

func (s *Service) logRejections(op string, rejected []models.Rejection) {
	for _, r := range rejected {
		s.log.Warn("placement rejected",
			zap.String("op", op),
			zap.String("title", r.Title),
			zap.String("reason", string(r.Reason)),
			zap.String("detail", r.Detail),
			zap.String("step", r.StepID),
			zap.String("block", r.BlockID),
			zap.Time("start", r.Start))
	}
}
