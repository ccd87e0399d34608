package jobs

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkoumba/translog-api/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}

func TestWorker_EnqueueAsyncRunsJob(t *testing.T) {
	w := NewWorker(2)
	defer w.Shutdown()

	done := make(chan struct{})
	w.EnqueueAsync(func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async job never ran")
	}
}

func TestWorker_ShutdownWaitsForAsyncJobs(t *testing.T) {
	w := NewWorker(1)

	var finished atomic.Bool
	started := make(chan struct{})
	w.EnqueueAsync(func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	<-started
	w.Shutdown()
	assert.True(t, finished.Load())
}

func TestWorker_EnqueueAsyncRecoversPanic(t *testing.T) {
	w := NewWorker(1)

	started := make(chan struct{})
	w.EnqueueAsync(func(ctx context.Context) error {
		close(started)
		panic("boom")
	})

	<-started
	// Shutdown returning proves the panicking job released its wg slot.
	w.Shutdown()
}

func TestWorker_ScheduleEveryImmediateRunsAtStartup(t *testing.T) {
	w := NewWorker(1)
	defer w.Shutdown()

	ran := make(chan struct{}, 1)
	w.ScheduleEveryImmediate(time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate schedule never fired")
	}
}
