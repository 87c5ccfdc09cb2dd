package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct{ calls atomic.Int32 }

func (c *countingSweeper) Sweep(context.Context, time.Time) (int, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New("not a schedule", &countingSweeper{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestRunSweeps(t *testing.T) {
	sweeper := &countingSweeper{}
	s, err := New("", sweeper, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	s.run()
	s.Start()
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, int32(1), sweeper.calls.Load())
}
