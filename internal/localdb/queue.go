package localdb

import (
	"context"
	"sync"
)

// task is one unit of work for the loop goroutine.
type task struct {
	op  string
	run func(ctx context.Context)
}

// taskQueue is a thread-safe, unbounded FIFO of tasks.
//
// Callers enqueue from any goroutine; only the DB loop dequeues. The signal
// channel (buffered, size 1) lets the loop sleep until work arrives and is
// closed by Close to wake it for shutdown.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []task
	closed bool
	signal chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{
		tasks:  make([]task, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a task to the back of the queue.
// Returns false if the queue is closed.
func (q *taskQueue) Enqueue(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.tasks = append(q.tasks, t)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front task without blocking.
func (q *taskQueue) TryDequeue() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return task{}, false
	}

	t := q.tasks[0]
	// Drop the closure reference so it can be collected.
	q.tasks[0] = task{}
	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}
	return t, true
}

// Wait returns a channel that signals when tasks may be available.
func (q *taskQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued tasks.
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drained reports whether the queue is closed and empty.
func (q *taskQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.tasks) == 0
}

// Close stops further enqueues and wakes the loop.
// Already queued tasks are still dequeued.
func (q *taskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
