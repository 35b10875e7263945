// Package cron runs the periodic jobs of the service: resolving hangouts whose
// voting deadline passed, completing hangouts whose scheduled time passed and
// draining the notification outbox.
package cron

import (
	"context"
	"log/slog"
	"time"

	"hangout/internal/application"
	"hangout/internal/ports/input"
)

const defaultInterval = time.Minute

type Scheduler struct {
	Hangouts   input.HangoutUseCase
	Resolution input.ResolutionUseCase
	// Relay is optional.
	Relay    *OutboxRelay
	Interval time.Duration
	Logger   *slog.Logger
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// SweepReport counts what one sweep did.
type SweepReport struct {
	Resolved  int
	Completed int
	Delivered int
	Failed    int
}

// RunOnce performs one sweep. Failures are logged per hangout and never stop
// the sweep.
func (s *Scheduler) RunOnce(ctx context.Context) SweepReport {
	logger := application.ResolveLogger(s.Logger)
	var report SweepReport

	due, err := s.Hangouts.ListDueForResolution(ctx)
	if err != nil {
		logger.Error("list hangouts due for resolution failed",
			"event", "sweep_list_resolution_failed",
			"error", err.Error(),
		)
	}
	for _, h := range due {
		result, err := s.Resolution.Resolve(ctx, h.ID)
		if err != nil {
			report.Failed++
			logger.Warn("deadline resolution failed",
				"event", "sweep_resolve_failed",
				"hangout_id", h.ID,
				"error", err.Error(),
			)
			continue
		}
		if result.Outcome == input.OutcomeResolved {
			report.Resolved++
		}
	}

	done, err := s.Hangouts.ListDueForCompletion(ctx)
	if err != nil {
		logger.Error("list hangouts due for completion failed",
			"event", "sweep_list_completion_failed",
			"error", err.Error(),
		)
	}
	for _, h := range done {
		if _, err := s.Hangouts.CompleteHangout(ctx, h.ID); err != nil {
			report.Failed++
			logger.Warn("hangout completion failed",
				"event", "sweep_complete_failed",
				"hangout_id", h.ID,
				"error", err.Error(),
			)
			continue
		}
		report.Completed++
	}

	if s.Relay != nil {
		// Errors are already logged by the relay.
		report.Delivered, _ = s.Relay.RunOnce(ctx)
	}

	if report != (SweepReport{}) {
		logger.Info("sweep completed",
			"event", "sweep_completed",
			"resolved", report.Resolved,
			"completed", report.Completed,
			"delivered", report.Delivered,
			"failed", report.Failed,
		)
	}
	return report
}
