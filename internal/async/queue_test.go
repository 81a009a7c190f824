package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestQueue(opts ...Option) *TaskQueue {
	return NewTaskQueue(slog.New(slog.DiscardHandler), opts...)
}

func TestTaskQueue_RunsInArrivalOrder(t *testing.T) {
	q := newTestQueue()
	defer q.Shutdown(context.Background())

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 5; i++ {
		_ = q.Enqueue(context.Background(), Task{
			Name: "ordered",
			Run: func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			},
		})
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 5
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestTaskQueue_FailingTaskDoesNotStopWorker(t *testing.T) {
	q := newTestQueue()
	defer q.Shutdown(context.Background())

	done := make(chan struct{})
	_ = q.Enqueue(context.Background(), Task{
		Name: "fails",
		Run:  func(ctx context.Context) error { return errors.New("task error") },
	})
	_ = q.Enqueue(context.Background(), Task{
		Name: "succeeds",
		Run: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a failing task")
	}
}

func TestTaskQueue_PanickingTaskDoesNotStopWorker(t *testing.T) {
	q := newTestQueue()
	defer q.Shutdown(context.Background())

	done := make(chan struct{})
	_ = q.Enqueue(context.Background(), Task{
		Name: "panics",
		Run:  func(ctx context.Context) error { panic("boom") },
	})
	_ = q.Enqueue(context.Background(), Task{
		Name: "succeeds",
		Run: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a panicking task")
	}
}

func TestTaskQueue_EnqueueAfterShutdownIsNoop(t *testing.T) {
	q := newTestQueue()
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Task{
		Name: "late",
		Run: func(ctx context.Context) error {
			t.Error("task must not run after shutdown")
			return nil
		},
	})
	assert.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
}

func TestTaskQueue_ShutdownIdempotent(t *testing.T) {
	q := newTestQueue()
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
}
