package race

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ib-77/ropx/pkg/ropx"
	"github.com/ib-77/ropx/pkg/ropx/core"
	"github.com/ib-77/ropx/pkg/ropx/invoke"
)

// HedgeConfig controls hedged execution.
type HedgeConfig struct {
	// Delay is how long the primary may run before the backup is started.
	Delay time.Duration
	// Timeout bounds the total wait; 0 means no budget.
	Timeout time.Duration
	// Logger receives debug events; nil means no logging.
	Logger *zap.Logger
	// Telemetry receives start/stop events; nil disables emission.
	Telemetry core.Hook
}

// Hedge starts primary immediately and arms a timer for cfg.Delay. If the
// timer fires before primary resolves, backup is started and whichever of
// the two first produces a Success wins; the other is cancelled. If primary
// fails before the delay elapses, backup is promoted immediately. If both
// fail, the failures are combined into an AggregateError in completion
// order. On overall timeout the call fails with ErrTimeout.
func Hedge[T any](ctx context.Context, primary, backup ropx.Op[T], cfg HedgeConfig) ropx.Result[T] {
	log := core.Logger(cfg.Logger)
	core.Emit(cfg.Telemetry, core.Event{Name: "hedge.start"})

	hedgeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pch := make(chan ropx.Result[T], 1)
	go func() {
		pch <- invoke.Safe(hedgeCtx, primary)
	}()

	var bch chan ropx.Result[T]
	backupStarted := false
	startBackup := func() {
		bch = make(chan ropx.Result[T], 1)
		backupStarted = true
		go func(c chan ropx.Result[T]) {
			c <- invoke.Safe(hedgeCtx, backup)
		}(bch)
	}

	delayTimer := time.NewTimer(cfg.Delay)
	defer delayTimer.Stop()
	delayC := delayTimer.C

	var timeoutC <-chan time.Time
	if cfg.Timeout > 0 {
		timer := time.NewTimer(cfg.Timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	var perr, berr error
	pdone, bdone := false, false

	for {
		select {
		case r := <-pch:
			pch = nil
			pdone = true
			if r.IsSuccess() {
				cancel()
				core.Emit(cfg.Telemetry, core.Event{
					Name:     "hedge.stop",
					Metadata: map[string]string{"winner": "primary"},
				})
				return r
			}
			perr = r.Err()
			if !backupStarted {
				// Primary failed before the delay elapsed: no point waiting.
				delayTimer.Stop()
				delayC = nil
				log.Debug("primary failed, promoting backup", zap.Error(perr))
				startBackup()
			} else if bdone {
				return ropx.Fail[T](&ropx.AggregateError{Errs: []error{berr, perr}})
			}

		case r := <-bch:
			bch = nil
			bdone = true
			if r.IsSuccess() {
				cancel()
				core.Emit(cfg.Telemetry, core.Event{
					Name:     "hedge.stop",
					Metadata: map[string]string{"winner": "backup"},
				})
				return r
			}
			berr = r.Err()
			if pdone {
				return ropx.Fail[T](&ropx.AggregateError{Errs: []error{perr, berr}})
			}

		case <-delayC:
			delayC = nil
			if !backupStarted {
				log.Debug("hedge delay elapsed, starting backup",
					zap.Duration("delay", cfg.Delay))
				startBackup()
			}

		case <-timeoutC:
			cancel()
			core.Emit(cfg.Telemetry, core.Event{
				Name:     "hedge.stop",
				Metadata: map[string]string{"winner": "none"},
			})
			return ropx.Fail[T](ropx.ErrTimeout)

		case <-ctx.Done():
			cancel()
			return ropx.Cancel[T](ctx.Err())
		}
	}
}
