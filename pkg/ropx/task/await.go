package task

import (
	"context"
	"time"

	"github.com/ib-77/ropx/pkg/ropx"
)

// AwaitMany waits for every handle under one overall timeout budget and
// fails fast: the first failure observed (in input order) is returned and
// the remaining handles are left running. On full success the values are in
// input order. A timeout of zero means no budget.
func AwaitMany[T any](ctx context.Context, handles []*Handle[T], timeout time.Duration) ropx.Result[[]T] {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	values := make([]T, 0, len(handles))
	for _, h := range handles {
		r := awaitWithin(ctx, h, deadline)
		if !r.IsSuccess() {
			return ropx.CancelFrom[T, []T](r)
		}
		values = append(values, r.Result())
	}
	return ropx.Success(values)
}

// SettleMany waits for every handle under one overall timeout budget and
// partitions the outcomes. All is in input order.
func SettleMany[T any](ctx context.Context, handles []*Handle[T], timeout time.Duration) *ropx.Settlement[T] {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	results := make([]ropx.Result[T], 0, len(handles))
	for _, h := range handles {
		results = append(results, awaitWithin(ctx, h, deadline))
	}
	return ropx.Collect(results)
}

func awaitWithin[T any](ctx context.Context, h *Handle[T], deadline time.Time) ropx.Result[T] {
	if deadline.IsZero() {
		return h.Await(ctx, 0)
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		h.Cancel()
		return ropx.Fail[T](ropx.ErrTimeout)
	}
	return h.Await(ctx, remaining)
}
