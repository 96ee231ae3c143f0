// Package scheduler runs the retention sweep periodically.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mateconpizza/tabkeep/internal/vault"
)

var ErrInvalidInterval = errors.New("invalid interval")

// Cleaner deletes the records past their retention.
type Cleaner interface {
	CleanupOldURLs(ctx context.Context, retention time.Duration) (*vault.CleanupResult, error)
}

// Sweeper collects aged records on a fixed interval.
type Sweeper struct {
	cleaner   Cleaner
	retention time.Duration
	interval  time.Duration
	scheduler gocron.Scheduler
	job       gocron.Job

	mu   sync.Mutex
	last *vault.CleanupResult
	runs int
}

// New returns a stopped sweeper.
func New(c Cleaner, retention, interval time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	if retention <= 0 {
		return nil, fmt.Errorf("%w: %s", vault.ErrInvalidRetention, retention)
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep scheduler: %w", err)
	}

	return &Sweeper{
		cleaner:   c,
		retention: retention,
		interval:  interval,
		scheduler: s,
	}, nil
}

// Start registers the sweep job and starts the scheduler. The first sweep
// runs immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	j, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if _, err := s.RunNow(ctx); err != nil {
				slog.Error("retention sweep", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName("retention-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to register sweep: %w", err)
	}

	s.job = j
	s.scheduler.Start()
	slog.Info("sweeper started", "interval", s.interval, "retention", s.retention)

	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep.
func (s *Sweeper) Stop() error {
	slog.Info("sweeper stopping")

	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("stopping sweeper: %w", err)
	}

	return nil
}

// RunNow sweeps once outside of the schedule.
func (s *Sweeper) RunNow(ctx context.Context) (*vault.CleanupResult, error) {
	res, err := s.cleaner.CleanupOldURLs(ctx, s.retention)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = res
	s.runs++
	s.mu.Unlock()

	for _, e := range res.Errors {
		slog.Warn("retention sweep", "error", e)
	}

	return res, nil
}

// Last returns the result of the latest sweep and the number of sweeps run.
func (s *Sweeper) Last() (*vault.CleanupResult, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last, s.runs
}

// NextRun returns the time of the next scheduled sweep.
func (s *Sweeper) NextRun() (time.Time, error) {
	if s.job == nil {
		return time.Time{}, nil
	}

	t, err := s.job.NextRun()
	if err != nil {
		return time.Time{}, fmt.Errorf("next sweep: %w", err)
	}

	return t, nil
}
