// Package scheduler triggers the update coordinator at startup and then
// on a configurable cron schedule, skipping triggers that fire while an
// update is already running rather than queuing them.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/snisarenko-labs/ipcensus/internal/app/update"
	"github.com/snisarenko-labs/ipcensus/internal/logger"
)

// Runner is the subset of Coordinator the scheduler depends on.
type Runner interface {
	RunUpdate(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *logger.Logger
}

// New builds a scheduler for expr (standard five-field cron syntax) in
// the given IANA timezone.
func New(runner Runner, log *logger.Logger, expr, timezone string) (*Scheduler, error) {
	loc, err := parseLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	c := cron.New(cron.WithLocation(loc))
	s := &Scheduler{cron: c, runner: runner, log: log}
	if _, err := c.AddFunc(expr, s.trigger); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron expression %q: %w", expr, err)
	}
	return s, nil
}

// Run performs the startup update synchronously, then starts the cron
// loop and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.trigger()
	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

func (s *Scheduler) trigger() {
	ctx := context.Background()
	if err := s.runner.RunUpdate(ctx); err != nil {
		if errors.Is(err, update.ErrSkipped) {
			s.log.InfoContext(ctx, "scheduled update skipped: already in progress")
			return
		}
		s.log.ErrorContext(ctx, "scheduled update failed", "error", err)
	}
}
