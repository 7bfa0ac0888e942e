package batches

import (
	"context"
	"log/slog"
	"sync"
)

// Runner executes batch runs sequentially on a background goroutine.
// Enqueued tasks survive the submitting request; Drain blocks until the
// queue is empty, which execution tests rely on.
type Runner struct {
	tasks   chan func(context.Context)
	wg      sync.WaitGroup
	logger  *slog.Logger
	started bool
	mu      sync.Mutex
}

// NewRunner creates a Runner with the given queue capacity.
func NewRunner(capacity int, logger *slog.Logger) *Runner {
	if capacity < 1 {
		capacity = 1
	}
	return &Runner{
		tasks:  make(chan func(context.Context), capacity),
		logger: logger.With("system", "runner"),
	}
}

// Start launches the worker loop. Tasks run until ctx is canceled; the
// task currently running finishes first.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				// Tasks still queued at shutdown are dropped; their Drain
				// accounting must still be released.
				for {
					select {
					case <-r.tasks:
						r.wg.Done()
					default:
						return
					}
				}
			case task := <-r.tasks:
				task(ctx)
				r.wg.Done()
			}
		}
	}()
}

// Enqueue schedules a task. Returns false when the queue is full.
func (r *Runner) Enqueue(task func(context.Context)) bool {
	r.wg.Add(1)
	select {
	case r.tasks <- task:
		return true
	default:
		r.wg.Done()
		r.logger.Warn("task queue full, submission rejected")
		return false
	}
}

// Drain blocks until every enqueued task has finished.
func (r *Runner) Drain() {
	r.wg.Wait()
}
