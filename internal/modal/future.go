package modal

import (
	"context"
	"sync"
)

// Future is a value that resolves exactly once
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve sets the value and reports whether this call won
func (f *Future[T]) resolve(v T) bool {
	won := false
	f.once.Do(func() {
		f.value = v
		won = true
		close(f.done)
	})
	return won
}

// Done is closed once the future resolves
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Value returns the resolved value without blocking
func (f *Future[T]) Value() (T, bool) {
	select {
	case <-f.done:
		return f.value, true
	default:
		var zero T
		return zero, false
	}
}

// Wait blocks until the future resolves or ctx is done
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
