// Package scheduler triggers scan cycles on a fixed interval. The engine
// never schedules itself; this is the only component that owns a timer.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler wraps a cron runner around the scan job.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// cronLogger adapts zerolog to the cron.Logger interface so skipped-run
// notices land in the application log.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// New creates a Scheduler that invokes job every intervalSeconds. A tick that
// arrives while the previous cycle is still running is skipped, so slow
// cycles never overlap. The parent context stops in-flight jobs from starting
// new work after shutdown begins.
func New(ctx context.Context, intervalSeconds int, job func(context.Context), log zerolog.Logger) (*Scheduler, error) {
	if intervalSeconds < 1 {
		return nil, fmt.Errorf("scan interval must be at least 1s, got %d", intervalSeconds)
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: log})))
	s := &Scheduler{cron: c, log: log}
	spec := fmt.Sprintf("@every %ds", intervalSeconds)
	if _, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	}); err != nil {
		return nil, fmt.Errorf("register scan job: %w", err)
	}
	log.Info().Int("interval_seconds", intervalSeconds).Msg("scan job registered")
	return s, nil
}

// Start begins triggering cycles.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}
