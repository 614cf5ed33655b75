package race

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ib-77/ropx/pkg/ropx"
	"github.com/ib-77/ropx/pkg/ropx/core"
	"github.com/ib-77/ropx/pkg/ropx/invoke"
)

// Config controls a race.
type Config struct {
	// Timeout bounds the whole race; 0 means no budget. On expiry the
	// collected failures are returned with ErrTimeout appended.
	Timeout time.Duration
	// Logger receives debug events; nil means no logging.
	Logger *zap.Logger
	// Telemetry receives start/stop events; nil disables emission.
	Telemetry core.Hook
}

// First starts every alternative concurrently and returns the first
// Success, cancelling the rest. If every alternative fails, the errors are
// aggregated in completion order. An empty input fails immediately with
// ErrEmptyRace.
func First[T any](ctx context.Context, ops []ropx.Op[T], cfg Config) ropx.Result[T] {
	if len(ops) == 0 {
		return ropx.Fail[T](ropx.ErrEmptyRace)
	}

	log := core.Logger(cfg.Logger)
	core.Emit(cfg.Telemetry, core.Event{
		Name:         "race.start",
		Measurements: map[string]float64{"alternatives": float64(len(ops))},
	})

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so losers can always publish without blocking after the
	// winner is picked up.
	ch := make(chan ropx.Result[T], len(ops))
	for _, op := range ops {
		go func(op ropx.Op[T]) {
			ch <- invoke.Safe(raceCtx, op)
		}(op)
	}

	var timeoutC <-chan time.Time
	if cfg.Timeout > 0 {
		timer := time.NewTimer(cfg.Timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	errs := make([]error, 0, len(ops))
	for range ops {
		select {
		case r := <-ch:
			if r.IsSuccess() {
				cancel()
				log.Debug("race winner", zap.Stringer("result", r.Id()))
				core.Emit(cfg.Telemetry, core.Event{
					Name:     "race.stop",
					Metadata: map[string]string{"outcome": "winner"},
				})
				return r
			}
			errs = append(errs, r.Err())

		case <-timeoutC:
			cancel()
			core.Emit(cfg.Telemetry, core.Event{
				Name:     "race.stop",
				Metadata: map[string]string{"outcome": "timeout"},
			})
			return ropx.Fail[T](&ropx.AggregateError{Errs: append(errs, ropx.ErrTimeout)})

		case <-ctx.Done():
			cancel()
			return ropx.Cancel[T](ctx.Err())
		}
	}

	core.Emit(cfg.Telemetry, core.Event{
		Name:     "race.stop",
		Metadata: map[string]string{"outcome": "exhausted"},
	})
	return ropx.Fail[T](&ropx.AggregateError{Errs: errs})
}
