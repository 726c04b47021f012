package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"FeedMonitor/internal/ports"
)

// CronScheduler drives recurring jobs from standard cron expressions.
// A panic inside one job is recovered so future triggers keep firing.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds an empty scheduler.
func NewCronScheduler(logger *slog.Logger) *CronScheduler {
	return &CronScheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// Schedule registers a job under a cron expression.
func (c *CronScheduler) Schedule(spec string, job func(time.Time)) error {
	if job == nil {
		return fmt.Errorf("job is required")
	}

	_, err := c.cron.AddFunc(spec, func() {
		defer func() {
			if rec := recover(); rec != nil {
				c.logger.Error("scheduled job panicked", "spec", spec, "panic", rec)
			}
		}()
		job(time.Now())
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	return nil
}

// Start begins firing registered jobs.
func (c *CronScheduler) Start(_ context.Context) error {
	c.cron.Start()
	return nil
}

// Stop halts scheduling and waits for running jobs to return.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
