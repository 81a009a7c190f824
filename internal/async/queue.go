package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task is one unit of background work. A returned error marks the task
// failed; the worker moves on either way.
type Task struct {
	Name        string
	SubmittedAt time.Time
	TraceID     string
	Run         func(ctx context.Context) error
}

// TaskQueue runs tasks one at a time in arrival order on a single worker.
// Best-effort: tasks still queued at shutdown are dropped, and a failing or
// panicking task never stops the worker.
type TaskQueue struct {
	logger  *slog.Logger
	timeout time.Duration

	ch   chan Task
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*TaskQueue)

func WithQueueSize(n int) Option {
	return func(q *TaskQueue) {
		if n > 0 {
			q.ch = make(chan Task, n)
		}
	}
}

func WithTaskTimeout(d time.Duration) Option {
	return func(q *TaskQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewTaskQueue(logger *slog.Logger, opts ...Option) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &TaskQueue{
		logger:  logger,
		timeout: 5 * time.Minute,
		ch:      make(chan Task, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *TaskQueue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Info("queue.worker_started")
			for task := range q.ch {
				q.runOne(task)
			}
			q.logger.Info("queue.worker_stopped")
		}()
	})
}

func (q *TaskQueue) runOne(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queue.task_panic", "task", task.Name, "trace_id", task.TraceID, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		q.logger.Error("queue.task_failed",
			"task", task.Name,
			"trace_id", task.TraceID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	q.logger.Info("queue.task_ok",
		"task", task.Name,
		"trace_id", task.TraceID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// Enqueue submits a task. Submitting to a closed queue is a logged no-op; a
// full queue applies backpressure instead of dropping.
func (q *TaskQueue) Enqueue(_ context.Context, task Task) error {
	if task.TraceID == "" {
		task.TraceID = uuid.New().String()
	}
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue_after_shutdown", "task", task.Name)
		return nil
	}
	select {
	case q.ch <- task:
		q.logger.Debug("queue.enqueued", "task", task.Name, "trace_id", task.TraceID)
	default:
		q.logger.Warn("queue.full_backpressure", "task", task.Name)
		q.ch <- task
	}
	return nil
}

// Shutdown stops intake, lets the in-flight task finish, and waits for the
// worker to drain or the context to lapse. Queued-but-unstarted tasks may be
// dropped.
func (q *TaskQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown_interrupted")
	case <-done:
		q.logger.Info("queue.shutdown_complete")
	}
}
