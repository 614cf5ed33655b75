package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/ropx/pkg/ropx"
	"github.com/ib-77/ropx/pkg/ropx/invoke"
)

// Option configures how a task is started.
type Option func(*options)

type options struct {
	isolated bool
}

// Isolated severs the task from the caller's context: cancelling the caller
// does not cancel the task. The fault boundary is always on regardless.
func Isolated() Option {
	return func(o *options) {
		o.isolated = true
	}
}

// Handle is an opaque reference to one unit of concurrent work.
type Handle[T any] struct {
	id     uuid.UUID
	done   chan struct{}
	cancel context.CancelFunc

	once sync.Once
	res  ropx.Result[T]
}

// Go starts op on its own goroutine, wrapped by the invoke fault boundary,
// and returns a handle for it.
func Go[T any](ctx context.Context, op ropx.Op[T], opts ...Option) *Handle[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.isolated {
		ctx = context.WithoutCancel(ctx)
	}
	runCtx, cancel := context.WithCancel(ctx)

	h := &Handle[T]{
		id:     uuid.New(),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer cancel()

		published := false
		defer func() {
			// The goroutine unwound without a result (runtime.Goexit);
			// resolve waiters with an abort fault.
			if !published {
				h.publish(ropx.Fail[T](ropx.NewPanicError(ropx.FaultAbort, "task terminated without a result")))
			}
		}()

		r := invoke.Safe(runCtx, op)
		published = true
		h.publish(r)
	}()

	return h
}

// Completed constructs an already-resolved handle, for mixing cached
// results with live work.
func Completed[T any](r ropx.Result[T]) *Handle[T] {
	h := &Handle[T]{
		id:     uuid.New(),
		done:   make(chan struct{}),
		cancel: func() {},
	}
	h.publish(r)
	return h
}

func (h *Handle[T]) publish(r ropx.Result[T]) {
	h.once.Do(func() {
		h.res = r
		close(h.done)
	})
}

// Id returns the handle identity.
func (h *Handle[T]) Id() uuid.UUID {
	return h.id
}

// Done is closed once the handle has transitioned.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// IsDone reports whether the handle has transitioned.
func (h *Handle[T]) IsDone() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Await blocks until the handle transitions, the timeout elapses, or ctx is
// done. A timeout of zero waits indefinitely. On timeout it returns
// Fail(ErrTimeout) and cancels the handle; the underlying work may still
// run to completion in the background.
func (h *Handle[T]) Await(ctx context.Context, timeout time.Duration) ropx.Result[T] {
	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case <-h.done:
		return h.res
	case <-timeoutC:
		h.Cancel()
		return ropx.Fail[T](ropx.ErrTimeout)
	case <-ctx.Done():
		return ropx.Cancel[T](ctx.Err())
	}
}

// Poll checks for a result, blocking at most the given duration. A
// non-positive duration makes the check non-blocking.
func (h *Handle[T]) Poll(timeout time.Duration) (ropx.Result[T], bool) {
	if timeout <= 0 {
		select {
		case <-h.done:
			return h.res, true
		default:
			var zero ropx.Result[T]
			return zero, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return h.res, true
	case <-timer.C:
		var zero ropx.Result[T]
		return zero, false
	}
}

// Cancel requests cooperative cancellation and resolves the handle as
// Cancelled unless it already completed. Idempotent.
func (h *Handle[T]) Cancel() {
	h.cancel()
	h.publish(ropx.Cancel[T](ropx.ErrCancelled))
}
