package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/metrics"
	"FeedMonitor/internal/ports"
	"FeedMonitor/pkg/resilience"
)

// ErrCycleInProgress reports a trigger arriving while a cycle is still
// in flight. The trigger is skipped, not queued.
var ErrCycleInProgress = errors.New("processing cycle already in progress")

// ErrSweepInProgress reports a sweep trigger arriving while a previous
// sweep is still running. Skipped like an overlapping cycle.
var ErrSweepInProgress = errors.New("expiry sweep already in progress")

// Runner serializes cycle execution across all triggers (cron and
// on-demand) with a single in-flight flag, and owns the expiry sweep.
type Runner struct {
	pipeline *Pipeline
	matches  ports.MatchRepository
	metrics  *metrics.Metrics
	policy   resilience.Policy
	logger   *slog.Logger
	inFlight atomic.Bool
	sweeping atomic.Bool
}

// NewRunner wires the pipeline with the sweep target.
func NewRunner(pipeline *Pipeline, matches ports.MatchRepository, m *metrics.Metrics,
	policy resilience.Policy, logger *slog.Logger) *Runner {
	return &Runner{
		pipeline: pipeline,
		matches:  matches,
		metrics:  m,
		policy:   policy,
		logger:   logger,
	}
}

// RunCycle executes one processing cycle unless another is in flight.
func (r *Runner) RunCycle(ctx context.Context) (domain.CycleReport, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Warn("cycle trigger skipped, previous cycle still running")
		r.metrics.IncCycleSkipped()
		return domain.CycleReport{}, ErrCycleInProgress
	}
	defer r.inFlight.Store(false)

	r.metrics.IncCycleRun()
	return r.pipeline.ProcessCycle(ctx), nil
}

// Sweep deletes expired match relations. A failed sweep only logs; the
// next scheduled attempt picks the rows up again.
func (r *Runner) Sweep(ctx context.Context) (int, error) {
	if !r.sweeping.CompareAndSwap(false, true) {
		r.logger.Warn("sweep trigger skipped, previous sweep still running")
		return 0, ErrSweepInProgress
	}
	defer r.sweeping.Store(false)

	removed, err := resilience.Do(ctx, r.policy, func(ctx context.Context) (int, error) {
		return r.matches.SweepExpired(ctx)
	})
	if err != nil {
		r.logger.Error("expiry sweep failed", "error", err)
		return 0, err
	}

	if removed > 0 {
		r.logger.Info("expiry sweep removed matches", "count", removed)
	}
	return removed, nil
}
