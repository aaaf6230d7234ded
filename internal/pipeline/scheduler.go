package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/robfig/cron/v3"
)

// Scheduler runs refresh cycles on a cron schedule. Overlapping cycles are
// skipped rather than queued.
type Scheduler struct {
	spec      string
	cron      *cron.Cron
	refresher *Refresher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewScheduler validates spec (standard five-field cron or a descriptor such as
// "@every 1h") and creates a Scheduler.
func NewScheduler(spec string, refresher *Refresher, metrics *observability.Metrics, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		spec:      spec,
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		refresher: refresher,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Run performs one cycle immediately, then follows the schedule until ctx is
// cancelled. It waits for a running cycle to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	s.metrics.RefresherRunning.Set(1)
	defer s.metrics.RefresherRunning.Set(0)

	_, err := s.cron.AddFunc(s.spec, func() {
		_, _ = s.refresher.RunOnce(ctx) // errors are logged by the refresher
	})
	if err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}

	s.logger.Info("refresh scheduler started", "schedule", s.spec)
	_, _ = s.refresher.RunOnce(ctx)
	s.cron.Start()

	<-ctx.Done()
	s.logger.Info("refresh scheduler stopping", "reason", ctx.Err())
	<-s.cron.Stop().Done()
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
