package localdb

import (
	"context"
	"sync"
)

// Future holds the eventual result of a queued operation.
// It resolves exactly once; later resolutions are ignored.
//
// Thread-safety: Done and Await may be called from any goroutine, any
// number of times.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve stores the result and wakes all waiters.
func (f *Future[T]) resolve(val T, err error) {
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed once the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future resolves or ctx is done.
// When ctx ends first it returns ctx.Err(); the operation itself keeps
// running and the future still resolves later.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
