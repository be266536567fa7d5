// Package scheduler runs collect+process cycles on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Job is one cycle. Errors are logged; they never stop the schedule.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. A cycle that is still running when the next
// tick fires causes that tick to be skipped.
type Scheduler struct {
	cron       *cron.Cron
	spec       string // cron spec, e.g. "@every 24h" or "0 6 * * *"
	job        Job
	runOnStart bool
	logger     *slog.Logger
	onStart    sync.WaitGroup // the run-on-start cycle; cron waits for its own
}

func New(spec string, job Job, runOnStart bool, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:       spec,
		job:        job,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Start registers the job and starts the cron loop. With runOnStart one
// cycle also runs immediately, without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec, "next", s.cron.Entry(id).Next)

	if s.runOnStart {
		// goes through the same chain so it cannot overlap a tick
		job := s.cron.Entry(id).WrappedJob
		s.onStart.Add(1)
		go func() {
			defer s.onStart.Done()
			job.Run()
		}()
	}
	return nil
}

// Stop halts the schedule and waits for a running cycle to finish, or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.onStart.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with a cycle still running")
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	cycleID := uuid.NewString()
	log := s.logger.With("cycle_id", cycleID)
	start := time.Now()

	log.Info("cycle started")
	if err := s.job(ctx); err != nil {
		log.Error("cycle failed", "error", err, "duration", time.Since(start))
		return
	}
	log.Info("cycle complete", "duration", time.Since(start))
}

// cronLogger routes robfig/cron's logging into slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
