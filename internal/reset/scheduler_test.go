package reset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResetter struct {
	calls int
	err   error
}

func (r *countingResetter) ResetAll(context.Context) error {
	r.calls++
	return r.err
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.Local)
}

func newTestScheduler(r Resetter, start time.Time) (*Scheduler, *time.Time) {
	s := New(Config{Hour: 0, Minute: 0, CheckInterval: time.Minute}, r, zerolog.Nop())
	clock := start
	s.now = func() time.Time { return clock }
	s.lastRunDate = start.Format("2006-01-02")
	return s, &clock
}

func TestFiresOncePerDay(t *testing.T) {
	r := &countingResetter{}
	s, clock := newTestScheduler(r, at(1, 23, 59))
	ctx := context.Background()

	// Still the same day: nothing happens.
	s.runIfDue(ctx)
	assert.Zero(t, r.calls)

	// Just past midnight: fires once.
	*clock = at(2, 0, 0)
	s.runIfDue(ctx)
	require.Equal(t, 1, r.calls)

	// Repeat ticks on the same day are no-ops.
	*clock = at(2, 0, 1)
	s.runIfDue(ctx)
	*clock = at(2, 14, 30)
	s.runIfDue(ctx)
	assert.Equal(t, 1, r.calls)

	// Next midnight fires again.
	*clock = at(3, 0, 0)
	s.runIfDue(ctx)
	assert.Equal(t, 2, r.calls)
}

func TestWaitsForConfiguredTime(t *testing.T) {
	r := &countingResetter{}
	s, clock := newTestScheduler(r, at(1, 12, 0))
	s.cfg.Hour = 3
	s.cfg.Minute = 30
	ctx := context.Background()

	*clock = at(2, 3, 29)
	s.runIfDue(ctx)
	assert.Zero(t, r.calls)

	*clock = at(2, 3, 30)
	s.runIfDue(ctx)
	assert.Equal(t, 1, r.calls)
}

func TestStartupDoesNotReset(t *testing.T) {
	r := &countingResetter{}
	s := New(DefaultConfig(), r, zerolog.Nop())

	// The construction date counts as already run.
	s.runIfDue(context.Background())
	assert.Zero(t, r.calls)
}

func TestResetErrorIsLoggedNotFatal(t *testing.T) {
	r := &countingResetter{err: errors.New("db closed")}
	s, clock := newTestScheduler(r, at(1, 12, 0))
	ctx := context.Background()

	*clock = at(2, 0, 0)
	assert.NotPanics(t, func() { s.runIfDue(ctx) })
	assert.Equal(t, 1, r.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := &countingResetter{}
	s, _ := newTestScheduler(r, at(1, 12, 0))
	s.cfg.CheckInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
