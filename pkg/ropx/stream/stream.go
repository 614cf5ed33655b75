package stream

import (
	"container/heap"
	"context"
	"io"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ib-77/ropx/pkg/ropx"
	"github.com/ib-77/ropx/pkg/ropx/core"
	"github.com/ib-77/ropx/pkg/ropx/invoke"
)

// ErrorPolicy governs what a stream does with a failing element.
type ErrorPolicy int

const (
	// Include yields failures alongside successes. This is the default.
	Include ErrorPolicy = iota
	// Halt yields the failing outcome, then terminates the sequence.
	Halt
	// Skip suppresses the failing element and continues.
	Skip
	// Substitute replaces the failure with Success(Config.Default).
	Substitute
)

// Config controls concurrent stream transformation.
type Config[T any] struct {
	// MaxConcurrency bounds in-flight transforms; 0 means 2x hardware parallelism.
	MaxConcurrency int
	// Ordered yields results in input order using a reorder buffer.
	Ordered bool
	// Buffer is extra result capacity beyond the concurrency bound.
	Buffer int
	// OnError selects the per-element error policy.
	OnError ErrorPolicy
	// Default is the substitute value for the Substitute policy.
	Default T
}

// Stream is a lazy, finite, single-pass sequence of outcomes.
// Next and the other terminal methods must not be called concurrently.
type Stream[T any] struct {
	next   func(ctx context.Context) (ropx.Result[T], error)
	cancel context.CancelFunc
}

// Next pulls the next outcome. It returns io.EOF once the sequence is
// exhausted or halted.
func (s *Stream[T]) Next(ctx context.Context) (ropx.Result[T], error) {
	return s.next(ctx)
}

// Close stops background work early. Safe to call multiple times; the
// stream yields io.EOF afterwards.
func (s *Stream[T]) Close() {
	s.cancel()
}

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect(ctx context.Context) ([]ropx.Result[T], error) {
	var out []ropx.Result[T]
	for {
		r, err := s.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
}

// Each invokes fn for every outcome until the stream ends or fn returns
// false.
func (s *Stream[T]) Each(ctx context.Context, fn func(r ropx.Result[T]) bool) error {
	defer s.Close()
	for {
		r, err := s.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(r) {
			return nil
		}
	}
}

type indexed[T any] struct {
	idx int
	res ropx.Result[T]
}

// Transform dispatches src elements to a bounded pool of concurrent
// transforms and yields outcomes as the consumer pulls them. The returned
// stream is single-pass and must be fully drained or closed to release the
// workers.
func Transform[A, B any](ctx context.Context, src *Source[A],
	fn func(ctx context.Context, item A) (B, error), cfg Config[B]) *Stream[B] {

	bound := core.Concurrency(cfg.MaxConcurrency)
	runCtx, cancel := context.WithCancel(ctx)

	// Workers block sending here while holding a semaphore token, so the
	// pool never runs further ahead than bound+Buffer undrained results.
	resCh := make(chan indexed[B], bound+max(cfg.Buffer, 0))
	sem := semaphore.NewWeighted(int64(bound))

	go func() {
		var wg sync.WaitGroup
		idx := 0
		for {
			item, err := src.Next(runCtx)
			if err != nil {
				// A broken source is not an exhausted one: anything other
				// than io.EOF surfaces as a failing element before the
				// sequence ends.
				if err != io.EOF {
					select {
					case resCh <- indexed[B]{idx: idx, res: ropx.Fail[B](err)}:
					case <-runCtx.Done():
					}
				}
				break
			}
			if err := sem.Acquire(runCtx, 1); err != nil {
				break
			}

			wg.Add(1)
			go func(i int, item A) {
				defer wg.Done()
				defer sem.Release(1)

				r := invoke.Safe(runCtx, func(ctx context.Context) (B, error) {
					return fn(ctx, item)
				})
				select {
				case resCh <- indexed[B]{idx: i, res: r}:
				case <-runCtx.Done():
				}
			}(idx, item)
			idx++
		}
		wg.Wait()
		close(resCh)
	}()

	s := &Stream[B]{cancel: cancel}
	s.next = consumer(s, resCh, cfg)
	return s
}

// consumer builds the pull function: reorder (when ordered), then apply
// the error policy at the yield point.
func consumer[B any](s *Stream[B], resCh <-chan indexed[B], cfg Config[B]) func(ctx context.Context) (ropx.Result[B], error) {
	var reorder resultHeap[B]
	nextIdx := 0
	halted := false
	var zero ropx.Result[B]

	take := func(ctx context.Context) (ropx.Result[B], error) {
		for {
			if cfg.Ordered && len(reorder) > 0 && reorder[0].idx == nextIdx {
				in := heap.Pop(&reorder).(indexed[B])
				nextIdx++
				return in.res, nil
			}

			select {
			case in, open := <-resCh:
				if !open {
					// Channel drained. In ordered mode late cancellations can
					// leave index gaps, so pop whatever remains in order.
					if len(reorder) > 0 {
						in := heap.Pop(&reorder).(indexed[B])
						nextIdx = in.idx + 1
						return in.res, nil
					}
					return zero, io.EOF
				}
				if cfg.Ordered {
					heap.Push(&reorder, in)
					continue
				}
				return in.res, nil

			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	return func(ctx context.Context) (ropx.Result[B], error) {
		if halted {
			return zero, io.EOF
		}

		for {
			r, err := take(ctx)
			if err != nil {
				return zero, err
			}
			if r.IsSuccess() {
				return r, nil
			}

			switch cfg.OnError {
			case Halt:
				halted = true
				s.Close()
				return r, nil
			case Skip:
				continue
			case Substitute:
				return ropx.Success(cfg.Default), nil
			default:
				return r, nil
			}
		}
	}
}

type resultHeap[T any] []indexed[T]

func (h resultHeap[T]) Len() int           { return len(h) }
func (h resultHeap[T]) Less(i, j int) bool { return h[i].idx < h[j].idx }
func (h resultHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *resultHeap[T]) Push(x any)        { *h = append(*h, x.(indexed[T])) }
func (h *resultHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
