package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscarl77/tech-job-market-analysis/internal/logger"
)

func TestStart_InvalidSpec(t *testing.T) {
	s := New("every tuesday", func(context.Context) error { return nil }, false, logger.Discard())
	err := s.Start(context.Background())
	assert.Error(t, err)
}

func TestStart_RunOnStart(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New("@every 1h", func(context.Context) error {
		ran <- struct{}{}
		return errors.New("scrape failed")
	}, true, logger.Discard())

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestStart_NoRunOnStart(t *testing.T) {
	var calls atomic.Int32
	s := New("@every 1h", func(context.Context) error {
		calls.Add(1)
		return nil
	}, false, logger.Discard())

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(100 * time.Millisecond)
	s.Stop(context.Background())
	assert.Equal(t, int32(0), calls.Load())
}

func TestStop_WaitsForRunningCycle(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	s := New("@every 1h", func(context.Context) error {
		close(started)
		time.Sleep(200 * time.Millisecond)
		finished.Store(true)
		return nil
	}, true, logger.Discard())

	require.NoError(t, s.Start(context.Background()))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.True(t, finished.Load())
}

func TestStop_RightAfterStartWaitsForRunOnStartCycle(t *testing.T) {
	var finished atomic.Bool
	s := New("@every 1h", func(context.Context) error {
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return nil
	}, true, logger.Discard())

	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.True(t, finished.Load())
}

func TestRunCycle_SkipsCancelledContext(t *testing.T) {
	var calls atomic.Int32
	s := New("@every 1h", func(context.Context) error {
		calls.Add(1)
		return nil
	}, false, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.runCycle(ctx)
	assert.Equal(t, int32(0), calls.Load())
}
