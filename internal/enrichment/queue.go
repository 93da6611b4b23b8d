package enrichment

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
)

// Task kinds routed through the queue.
const (
	TaskEnrichment = "enrichment"
	TaskAnalytics  = "analytics"
)

// Task is one unit of background work. The durable job record is always
// written before a Task is submitted; the in-memory Task is only a pointer to
// it, so a dropped Task costs a restart-recovery pass, never a lost job.
type Task struct {
	Kind        string
	JobID       string
	PropertyID  string
	TriggeredBy string
}

// Handler executes one task. Handlers record their outcome on the job record
// themselves; the queue only logs handler panics via errgroup semantics.
type Handler func(ctx context.Context, task Task)

// Queue is the in-process worker pool that executes enrichment and analytics
// jobs asynchronously from the HTTP requests that trigger them. Submission is
// non-blocking so trigger handlers return immediately.
type Queue struct {
	mu      sync.Mutex
	closed  bool
	tasks   chan Task
	group   *errgroup.Group
	cancel  context.CancelFunc
	handler Handler
}

// NewQueue creates a Queue with the given buffer depth.
func NewQueue(depth int) *Queue {
	return &Queue{tasks: make(chan Task, depth)}
}

// Start launches the worker goroutines. The handler is invoked for every
// submitted task until Stop is called or the parent context is cancelled.
func (q *Queue) Start(ctx context.Context, workers int, handler Handler) {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.handler = handler

	group, ctx := errgroup.WithContext(ctx)
	q.group = group

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for {
				select {
				case task, ok := <-q.tasks:
					if !ok {
						return nil
					}
					q.handler(ctx, task)
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
	}
}

// Submit enqueues a task without blocking.
// Returns apperrors.ErrQueueFull when the buffer is exhausted and
// apperrors.ErrQueueClosed once Stop has begun. In-flight handlers may still
// call Submit during shutdown (the chaining dispatcher does); the durable job
// record makes a rejected task recoverable on the next boot.
func (q *Queue) Submit(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return apperrors.ErrQueueClosed
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return apperrors.ErrQueueFull
	}
}

// Stop accepts no further work and waits for in-flight tasks to finish. The
// channel is closed under the same lock Submit holds, so a handler submitting
// mid-shutdown gets ErrQueueClosed instead of a send on a closed channel.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	if q.group != nil {
		if err := q.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("worker pool stopped with error: %v", err)
		}
	}
	if q.cancel != nil {
		q.cancel()
	}
}
