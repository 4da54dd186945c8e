package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/condoflow/condoflow/internal/config"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	log, err := logger.NewLogger(config.GetDefaultConfig())
	require.NoError(t, err)
	return New(log)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestScheduler(t)

	noop := func(ctx context.Context) error { return nil }

	assert.Error(t, s.Register("", time.Minute, noop))
	assert.Error(t, s.Register("billing", 0, noop))
	assert.Error(t, s.Register("billing", time.Minute, nil))

	assert.NoError(t, s.Register("billing", time.Minute, noop))
	assert.Error(t, s.Register("billing", time.Minute, noop), "duplicate name")
}

func TestRegisterAfterStart(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.Register("billing", time.Hour, noop))
	s.Start()
	defer s.Stop()

	assert.Error(t, s.Register("overdue", time.Hour, noop))
}

func TestPipelinesRunIndependently(t *testing.T) {
	s := newTestScheduler(t)

	var fastRuns, slowRuns atomic.Int32
	require.NoError(t, s.Register("fast", 10*time.Millisecond, func(ctx context.Context) error {
		fastRuns.Add(1)
		return nil
	}))
	require.NoError(t, s.Register("slow", 500*time.Millisecond, func(ctx context.Context) error {
		slowRuns.Add(1)
		return nil
	}))

	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, fastRuns.Load(), int32(3))
	assert.LessOrEqual(t, slowRuns.Load(), int32(1))
}

func TestFailuresDoNotDisableFutureTicks(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Register("flaky", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return ierr.NewError("boom").Mark(ierr.ErrSystem)
	}))

	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestPanicsDoNotDisableFutureTicks(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Register("panicky", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		panic("boom")
	}))

	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestStopWaitsForInFlightRun(t *testing.T) {
	s := newTestScheduler(t)

	started := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, s.Register("long", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}))

	s.Start()
	<-started
	s.Stop()

	assert.True(t, finished.Load(), "Stop returned before the in-flight run completed")
}

func TestStopWithoutStart(t *testing.T) {
	s := newTestScheduler(t)
	s.Stop()
}

func TestStopTwice(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.Register("billing", time.Hour, func(ctx context.Context) error { return nil }))

	s.Start()
	s.Stop()
	s.Stop()
}
