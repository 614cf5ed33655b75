package invoke

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc/panics"

	"github.com/ib-77/ropx/pkg/ropx"
)

// Safe runs op once and converts its outcome to a Result. A returned error
// becomes Fail, a context cancellation error becomes Cancel, and a panic is
// recovered and becomes Fail with a *ropx.PanicError.
func Safe[T any](ctx context.Context, op ropx.Op[T]) ropx.Result[T] {
	var res ropx.Result[T]

	rec := panics.Try(func() {
		v, err := op(ctx)
		switch {
		case err == nil:
			res = ropx.Success(v)
		case ropx.IsCancellation(err) || errors.Is(err, context.DeadlineExceeded):
			res = ropx.Cancel[T](err)
		default:
			res = ropx.Fail[T](err)
		}
	})

	if rec != nil {
		return ropx.Fail[T](&ropx.PanicError{
			Kind:  ropx.FaultException,
			Value: rec.Value,
			Stack: string(rec.Stack),
		})
	}
	return res
}

// SafeResult runs an operation that already produces a Result, adding the
// same fault boundary as Safe.
func SafeResult[T any](ctx context.Context, op func(ctx context.Context) ropx.Result[T]) ropx.Result[T] {
	var res ropx.Result[T]

	rec := panics.Try(func() {
		res = op(ctx)
	})

	if rec != nil {
		return ropx.Fail[T](&ropx.PanicError{
			Kind:  ropx.FaultException,
			Value: rec.Value,
			Stack: string(rec.Stack),
		})
	}
	return res
}

// Rethrow is the escape hatch out of the fault boundary: it unwraps a
// result, re-raising a captured panic with its original value. Use only
// where a caller explicitly wants fault propagation back.
func Rethrow[T any](r ropx.Result[T]) (T, error) {
	var pe *ropx.PanicError
	if errors.As(r.Err(), &pe) && pe.Kind == ropx.FaultException {
		panic(pe.Value)
	}
	return r.Result(), r.Err()
}
