package exec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/ib-77/ropx/pkg/ropx"
	"github.com/ib-77/ropx/pkg/ropx/core"
	"github.com/ib-77/ropx/pkg/ropx/invoke"
)

// BatchConfig controls sequential-wave execution.
type BatchConfig struct {
	// BatchSize is the number of operations per wave; 0 means the default
	// concurrency bound.
	BatchSize int
	// DelayBetweenBatches pauses between waves.
	DelayBetweenBatches time.Duration
	// Timeout bounds the whole call; 0 means no budget.
	Timeout time.Duration
	// Logger receives debug events; nil means no logging.
	Logger *zap.Logger
}

// Batch runs ops in sequential waves of BatchSize, each wave fully
// concurrent and fail-fast. The first failure aborts the current wave and
// skips all later waves. Values are in input order.
func Batch[T any](ctx context.Context, ops []ropx.Op[T], cfg BatchConfig) ropx.Result[[]T] {
	if len(ops) == 0 {
		return ropx.Success([]T{})
	}

	log := core.Logger(cfg.Logger)
	size := cfg.BatchSize
	if size <= 0 {
		size = core.DefaultConcurrency()
	}

	runCtx, cancel := withBudget(ctx, cfg.Timeout)
	defer cancel()

	values := make([]T, len(ops))

	for start := 0; start < len(ops); start += size {
		end := min(start+size, len(ops))
		wave := ops[start:end]
		log.Debug("starting batch wave", zap.Int("from", start), zap.Int("size", len(wave)))

		p := pool.New().
			WithContext(runCtx).
			WithCancelOnError().
			WithFirstError().
			WithMaxGoroutines(len(wave))

		for j, op := range wave {
			op := op
			idx := start + j
			p.Go(func(ctx context.Context) error {
				r := invoke.Safe(ctx, op)
				if r.IsFailure() {
					return r.Err()
				}
				values[idx] = r.Result() // each task owns a unique index
				return nil
			})
		}

		if err := p.Wait(); err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				return ropx.Fail[[]T](ropx.ErrTimeout)
			case ropx.IsCancellation(err):
				return ropx.Cancel[[]T](err)
			default:
				return ropx.Fail[[]T](err)
			}
		}

		if cfg.DelayBetweenBatches > 0 && end < len(ops) {
			if err := sleep(runCtx, cfg.DelayBetweenBatches); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return ropx.Fail[[]T](ropx.ErrTimeout)
				}
				return ropx.Cancel[[]T](err)
			}
		}
	}

	return ropx.Success(values)
}

// FirstSuccess tries ops sequentially and returns the first success.
// If every operation fails, the collected errors are aggregated under
// ErrAllFailed.
func FirstSuccess[T any](ctx context.Context, ops []ropx.Op[T]) ropx.Result[T] {
	errs := make([]error, 0, len(ops))

	for _, op := range ops {
		if ctx.Err() != nil {
			return ropx.Cancel[T](ctx.Err())
		}

		r := invoke.Safe(ctx, op)
		if r.IsSuccess() {
			return r
		}
		errs = append(errs, r.Err())
	}

	return ropx.Fail[T](fmt.Errorf("%w: %w", ropx.ErrAllFailed, &ropx.AggregateError{Errs: errs}))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
