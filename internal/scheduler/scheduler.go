// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/sidepot/internal/metrics"
)

// jobTimeout bounds a single run of a job.
const jobTimeout = time.Minute

// InvitePurger deletes invites that expired unused.
type InvitePurger interface {
	PurgeExpiredInvites(ctx context.Context) (int64, error)
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	purger  InvitePurger
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New schedules the invite sweep. The schedule uses the six-field cron format
// with a leading seconds field, e.g. "0 0 * * * *" for hourly.
func New(schedule string, purger InvitePurger, m *metrics.Metrics, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DiscardLogger))),
		purger:  purger,
		metrics: m,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(schedule, s.sweepInvites); err != nil {
		return nil, fmt.Errorf("invalid invite sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
	}
}

func (s *Scheduler) sweepInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.SweepInvites(ctx)
}

// SweepInvites runs the invite sweep once.
func (s *Scheduler) SweepInvites(ctx context.Context) {
	n, err := s.purger.PurgeExpiredInvites(ctx)
	if err != nil {
		s.logger.Error("Invite sweep failed", "error", err)
		return
	}
	s.metrics.InvitesPurged.Add(float64(n))
	if n > 0 {
		s.logger.Info("Expired invites purged", "count", n)
	}
}
