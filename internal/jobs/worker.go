package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkoumba/translog-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs fire-and-forget jobs and scheduled tasks off the request path
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	asyncSem chan struct{}
}

// NewWorker creates a worker; numWorkers bounds the async concurrency
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	return &Worker{
		ctx:      ctx,
		cancel:   cancel,
		asyncSem: make(chan struct{}, asyncLimit),
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by
// semaphore. Shutdown waits for every job accepted here.
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		defer func() {
			if r := recover(); r != nil {
				logger.Error(fmt.Sprintf("[Worker] Async job panic: %v", r))
			}
		}()

		if err := job(w.ctx); err != nil {
			logger.Error(fmt.Sprintf("[Worker] Async job error: %v", err))
		}
	}()
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval (not at startup).
func (w *Worker) ScheduleEvery(interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduledJob(job)
			}
		}
	}()
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals.
// Used for the prime snapshot refresh so a fresh deploy has a warm cache.
func (w *Worker) ScheduleEveryImmediate(interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runScheduledJob(job)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduledJob(job)
			}
		}
	}()
}

func (w *Worker) runScheduledJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[Scheduler] Job panic: %v", r))
		}
	}()
	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error(fmt.Sprintf("[Scheduler] Job error: %v", err))
	} else {
		logger.Info(fmt.Sprintf("[Scheduler] Job completed in %v", time.Since(start)))
	}
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}
