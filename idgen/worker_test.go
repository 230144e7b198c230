package idgen

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/testkit"
)

func TestWorkerServesConcurrentRequests(t *testing.T) {
	gen, err := New(6, WithLogger(clog.Discard()))
	require.NoError(t, err)
	w := NewWorker(gen)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	const (
		goroutines = 4
		perRoutine = 5_000
	)
	var (
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, goroutines*perRoutine)
		wg   sync.WaitGroup
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perRoutine {
				id, err := w.Next(ctx)
				if err != nil {
					t.Errorf("next: %v", err)
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, goroutines*perRoutine)

	cancel()
	require.NoError(t, <-runErr)
	<-w.Done()

	_, err = w.Next(context.Background())
	assert.ErrorIs(t, err, ErrWorkerStopped)
}

func TestWorkerStopsOnClockRegression(t *testing.T) {
	clock := testkit.NewManualClock(1000)
	gen := newManualGenerator(t, clock, 0, 8, 41)
	w := NewWorker(gen)

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := w.Next(ctx)
	require.NoError(t, err)

	clock.Set(500)
	_, err = w.Next(ctx)
	assert.ErrorIs(t, err, ErrClockRegression)

	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, ErrClockRegression)
	case <-ctx.Done():
		t.Fatal("worker did not stop after clock regression")
	}

	_, err = w.Next(ctx)
	assert.ErrorIs(t, err, ErrWorkerStopped)
}

func TestWorkerNextHonoursContext(t *testing.T) {
	gen, err := New(0, WithLogger(clog.Discard()))
	require.NoError(t, err)
	w := NewWorker(gen)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// 未调用 Run，请求无人处理
	_, err = w.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerRunOnce(t *testing.T) {
	gen, err := New(0, WithLogger(clog.Discard()))
	require.NoError(t, err)
	w := NewWorker(gen)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	_, err = w.Next(ctx)
	require.NoError(t, err)

	assert.Error(t, w.Run(ctx))

	cancel()
	require.NoError(t, <-runErr)
}
