package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const sweepTimeout = 30 * time.Second

type StaleBookingCanceller interface {
	CancelStalePending(ctx context.Context) (int, error)
}

// Scheduler periodically releases dates held by abandoned pending bookings.
type Scheduler struct {
	sched     gocron.Scheduler
	canceller StaleBookingCanceller
	interval  time.Duration
	log       *zap.Logger
}

func New(canceller StaleBookingCanceller, interval time.Duration, log *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{
		sched:     sched,
		canceller: canceller,
		interval:  interval,
		log:       log.With(zap.String("component", "scheduler")),
	}, nil
}

// Start registers the sweep job and runs it once immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	j, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.sweep(ctx) }),
		gocron.WithName("cancel-stale-pending"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}

	s.sched.Start()

	s.log.Info("Scheduler started",
		zap.String("job", j.Name()),
		zap.String("job_id", j.ID().String()),
		zap.Duration("interval", s.interval),
	)
	return nil
}

func (s *Scheduler) Shutdown() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.canceller.CancelStalePending(ctx)
	if err != nil {
		s.log.Error("Stale booking sweep failed", zap.Error(err))
		return
	}

	s.log.Debug("Stale booking sweep finished", zap.Int("cancelled", n))
}
