package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	c := NewCronScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := c.Schedule("not a cron spec", func(time.Time) {})
	require.Error(t, err)
}

func TestScheduleRejectsNilJob(t *testing.T) {
	c := NewCronScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := c.Schedule("* * * * *", nil)
	require.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	c := NewCronScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, c.Schedule("* * * * *", func(time.Time) {}))
	require.NoError(t, c.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.Stop(ctx))
}
