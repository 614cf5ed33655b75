package stream

import (
	"context"
	"io"
)

// Source produces input elements one at a time. Next returns io.EOF when
// the sequence is exhausted. Sources are single-consumer.
type Source[A any] struct {
	next func(ctx context.Context) (A, error)
}

// Next pulls the next element.
func (s *Source[A]) Next(ctx context.Context) (A, error) {
	return s.next(ctx)
}

// FromSlice makes a source over items.
func FromSlice[A any](items []A) *Source[A] {
	idx := 0
	return FromFunc(func(ctx context.Context) (A, error) {
		var zero A
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if idx >= len(items) {
			return zero, io.EOF
		}
		v := items[idx]
		idx++
		return v, nil
	})
}

// FromChan makes a source over a channel; the sequence ends when the
// channel is closed.
func FromChan[A any](ch <-chan A) *Source[A] {
	return FromFunc(func(ctx context.Context) (A, error) {
		var zero A
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case v, ok := <-ch:
			if !ok {
				return zero, io.EOF
			}
			return v, nil
		}
	})
}

// FromFunc makes a source from a pull function.
func FromFunc[A any](fn func(ctx context.Context) (A, error)) *Source[A] {
	return &Source[A]{next: fn}
}
