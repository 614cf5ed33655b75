package exec

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ib-77/ropx/pkg/ropx"
	"github.com/ib-77/ropx/pkg/ropx/core"
	"github.com/ib-77/ropx/pkg/ropx/invoke"
)

// Config controls bounded execution. The zero value is usable: default
// concurrency bound, no timeout, arrival-order results.
type Config struct {
	// MaxConcurrency bounds in-flight operations; 0 means 2x hardware parallelism.
	MaxConcurrency int
	// Timeout bounds the whole call; 0 means no budget.
	Timeout time.Duration
	// Ordered returns results in input order instead of completion order.
	Ordered bool
	// OnProgress is invoked after each observed completion, monotonically,
	// at most once per input. Settle mode observes every input; fail-fast
	// mode stops observing once it short-circuits on a failure.
	OnProgress func(done, total int)
	// Logger receives debug events; nil means no logging.
	Logger *zap.Logger
	// Telemetry receives start/stop events; nil disables emission.
	Telemetry core.Hook
}

type indexed[T any] struct {
	idx int
	res ropx.Result[T]
}

// dispatch schedules ops under the semaphore bound and delivers indexed
// results. The channel is buffered for the full input so abandoned workers
// never leak; it is closed once every input has produced a result.
func dispatch[T any](ctx context.Context, ops []ropx.Op[T], bound int) <-chan indexed[T] {
	out := make(chan indexed[T], len(ops))
	sem := semaphore.NewWeighted(int64(bound))

	go func() {
		var wg sync.WaitGroup
		for i, op := range ops {
			if err := sem.Acquire(ctx, 1); err != nil {
				// Scheduling stopped; unstarted inputs resolve as cancelled.
				out <- indexed[T]{idx: i, res: ropx.Cancel[T](err)}
				continue
			}

			wg.Add(1)
			go func(i int, op ropx.Op[T]) {
				defer wg.Done()
				defer sem.Release(1)
				out <- indexed[T]{idx: i, res: invoke.Safe(ctx, op)}
			}(i, op)
		}
		wg.Wait()
		close(out)
	}()

	return out
}

// RunAll executes ops in fail-fast mode. The first failure observed is
// returned immediately; the shared context is cancelled so cooperative
// in-flight operations stop early, and their late results are discarded.
// On full success the values are in input order when cfg.Ordered is set,
// otherwise in completion order.
func RunAll[T any](ctx context.Context, ops []ropx.Op[T], cfg Config) ropx.Result[[]T] {
	if len(ops) == 0 {
		return ropx.Success([]T{})
	}

	log := core.Logger(cfg.Logger)
	core.Emit(cfg.Telemetry, core.Event{
		Name:         "exec.run_all.start",
		Measurements: map[string]float64{"operations": float64(len(ops))},
	})

	runCtx, cancel := withBudget(ctx, cfg.Timeout)
	defer cancel()

	out := dispatch(runCtx, ops, core.Concurrency(cfg.MaxConcurrency))

	total := len(ops)
	byInput := make([]T, total)
	arrival := make([]T, 0, total)
	done := 0

	for completed := 0; completed < total; completed++ {
		select {
		case in := <-out:
			done++
			fireProgress(cfg.OnProgress, done, total)

			if in.res.IsFailure() {
				// An operation observing the expired budget reports the same
				// timeout as the collector would.
				if runCtx.Err() == context.DeadlineExceeded && ropx.IsTimeout(in.res.Err()) {
					return ropx.Fail[[]T](ropx.ErrTimeout)
				}
				cancel()
				log.Debug("fail-fast short-circuit",
					zap.Int("index", in.idx), zap.Error(in.res.Err()))
				core.Emit(cfg.Telemetry, core.Event{
					Name:     "exec.run_all.stop",
					Metadata: map[string]string{"outcome": "failure"},
				})
				return ropx.CancelFrom[T, []T](in.res)
			}
			byInput[in.idx] = in.res.Result()
			arrival = append(arrival, in.res.Result())

		case <-runCtx.Done():
			core.Emit(cfg.Telemetry, core.Event{
				Name:     "exec.run_all.stop",
				Metadata: map[string]string{"outcome": "timeout"},
			})
			if runCtx.Err() == context.DeadlineExceeded {
				return ropx.Fail[[]T](ropx.ErrTimeout)
			}
			return ropx.Cancel[[]T](runCtx.Err())
		}
	}

	core.Emit(cfg.Telemetry, core.Event{
		Name:     "exec.run_all.stop",
		Metadata: map[string]string{"outcome": "success"},
	})
	if cfg.Ordered {
		return ropx.Success(byInput)
	}
	return ropx.Success(arrival)
}

// SettleAll executes ops and waits for every one of them, partitioning the
// outcomes. When the timeout budget expires, operations that have not yet
// resolved settle as Fail(ErrTimeout). All is in input order when
// cfg.Ordered is set, otherwise in completion order.
func SettleAll[T any](ctx context.Context, ops []ropx.Op[T], cfg Config) *ropx.Settlement[T] {
	if len(ops) == 0 {
		return &ropx.Settlement[T]{}
	}

	core.Emit(cfg.Telemetry, core.Event{
		Name:         "exec.settle_all.start",
		Measurements: map[string]float64{"operations": float64(len(ops))},
	})

	runCtx, cancel := withBudget(ctx, cfg.Timeout)
	defer cancel()

	out := dispatch(runCtx, ops, core.Concurrency(cfg.MaxConcurrency))

	total := len(ops)
	byInput := make([]ropx.Result[T], total)
	seen := make([]bool, total)
	arrival := make([]ropx.Result[T], 0, total)
	done := 0

collect:
	for completed := 0; completed < total; completed++ {
		select {
		case in := <-out:
			done++
			fireProgress(cfg.OnProgress, done, total)
			byInput[in.idx] = in.res
			seen[in.idx] = true
			arrival = append(arrival, in.res)

		case <-runCtx.Done():
			// Budget expired: settle the stragglers as timed out.
			for i := range ops {
				if !seen[i] {
					done++
					fireProgress(cfg.OnProgress, done, total)
					r := ropx.Fail[T](ropx.ErrTimeout)
					byInput[i] = r
					seen[i] = true
					arrival = append(arrival, r)
				}
			}
			break collect
		}
	}

	core.Emit(cfg.Telemetry, core.Event{Name: "exec.settle_all.stop"})
	if cfg.Ordered {
		return ropx.Collect(byInput)
	}
	return ropx.Collect(arrival)
}

// MapConcurrently applies fn to every item in fail-fast mode.
func MapConcurrently[A, B any](ctx context.Context, items []A,
	fn func(ctx context.Context, item A) (B, error), cfg Config) ropx.Result[[]B] {
	return RunAll(ctx, itemOps(items, fn), cfg)
}

// MapIndexed is MapConcurrently with the input index passed to fn.
func MapIndexed[A, B any](ctx context.Context, items []A,
	fn func(ctx context.Context, idx int, item A) (B, error), cfg Config) ropx.Result[[]B] {

	ops := make([]ropx.Op[B], len(items))
	for i, item := range items {
		i, item := i, item
		ops[i] = func(ctx context.Context) (B, error) {
			return fn(ctx, i, item)
		}
	}
	return RunAll(ctx, ops, cfg)
}

// SettleMap applies fn to every item in settle mode.
func SettleMap[A, B any](ctx context.Context, items []A,
	fn func(ctx context.Context, item A) (B, error), cfg Config) *ropx.Settlement[B] {
	return SettleAll(ctx, itemOps(items, fn), cfg)
}

func itemOps[A, B any](items []A, fn func(ctx context.Context, item A) (B, error)) []ropx.Op[B] {
	ops := make([]ropx.Op[B], len(items))
	for i, item := range items {
		item := item
		ops[i] = func(ctx context.Context) (B, error) {
			return fn(ctx, item)
		}
	}
	return ops
}

func withBudget(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// fireProgress contains panics from the caller's callback: observability
// must not interrupt aggregation.
func fireProgress(fn func(done, total int), done, total int) {
	if fn == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	fn(done, total)
}
