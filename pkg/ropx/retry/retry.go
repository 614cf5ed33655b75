package retry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ib-77/ropx/pkg/ropx"
	"github.com/ib-77/ropx/pkg/ropx/core"
	"github.com/ib-77/ropx/pkg/ropx/invoke"
)

// DefaultMaxAttempts is used when Config.MaxAttempts is unset.
const DefaultMaxAttempts = 3

// Config controls one retry session.
type Config struct {
	// MaxAttempts is the total invocation budget; 0 means DefaultMaxAttempts.
	MaxAttempts int
	// InitialDelay seeds the backoff formula.
	InitialDelay time.Duration
	// MaxDelay caps computed delays; 0 means uncapped.
	MaxDelay time.Duration
	// Backoff selects the delay formula between attempts.
	Backoff Strategy
	// Jitter perturbs each delay uniformly within +/- Jitter*delay, in [0, 1].
	Jitter float64
	// ShouldRetry decides recoverability; when nil the Classifier decides,
	// and with neither set every failure not marked permanent is retried.
	ShouldRetry func(err error) bool
	// OnRetry observes each scheduled retry. A panic in the hook is
	// contained and does not interrupt the retry flow.
	OnRetry func(attempt int, err error, delay time.Duration)
	// Classifier supplies error-specific recoverability, delay, budget and
	// strategy overrides.
	Classifier Recoverable
	// Logger receives debug events; nil means no logging.
	Logger *zap.Logger
	// Telemetry receives retry events; nil disables emission.
	Telemetry core.Hook
}

// Do invokes op until it succeeds, the attempt budget is exhausted, or the
// failure is classified non-recoverable. Exhaustion returns
// Fail(*MaxRetriesError); a non-recoverable failure is returned as-is.
// A cancelled operation is returned immediately without further attempts.
func Do[T any](ctx context.Context, op ropx.Op[T], cfg Config) ropx.Result[T] {
	log := core.Logger(cfg.Logger)

	budget := cfg.MaxAttempts
	if budget <= 0 {
		budget = DefaultMaxAttempts
	}

	var bo Backoff

	for attempt := 1; ; attempt++ {
		r := invoke.Safe(ctx, op)
		if r.IsSuccess() || r.IsCancel() {
			return r
		}
		err := r.Err()

		max := budget
		if cfg.Classifier != nil {
			if m := cfg.Classifier.MaxAttempts(err); m > 0 {
				max = m
			}
		}
		if attempt >= max {
			core.Emit(cfg.Telemetry, core.Event{
				Name:         "retry.exhausted",
				Measurements: map[string]float64{"attempts": float64(attempt)},
			})
			return ropx.Fail[T](&ropx.MaxRetriesError{Attempts: attempt, LastErr: err})
		}

		if !shouldRetry(cfg, err) {
			log.Debug("non-recoverable failure, giving up",
				zap.Int("attempt", attempt), zap.Error(err))
			return ropx.Fail[T](err)
		}

		delay := classifierDelay(cfg, err, attempt)
		if delay <= 0 {
			if bo == nil {
				bo = NewBackoff(sessionStrategy(cfg, err), cfg)
			}
			delay = bo.NextBackOff()
			if delay < 0 {
				delay = 0
			}
		}
		delay = applyJitter(delay, cfg.Jitter)

		fireOnRetry(cfg.OnRetry, attempt, err, delay)
		log.Debug("retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		core.Emit(cfg.Telemetry, core.Event{
			Name: "retry.attempt",
			Measurements: map[string]float64{
				"attempt":  float64(attempt),
				"delay_ms": float64(delay.Milliseconds()),
			},
		})

		if err := sleep(ctx, delay); err != nil {
			return ropx.Cancel[T](err)
		}
	}
}

func shouldRetry(cfg Config, err error) bool {
	if cfg.ShouldRetry != nil {
		return cfg.ShouldRetry(err)
	}
	if cfg.Classifier != nil {
		return cfg.Classifier.Recoverable(err)
	}
	return ropx.IsTransient(err)
}

func classifierDelay(cfg Config, err error, attempt int) time.Duration {
	if cfg.Classifier == nil {
		return 0
	}
	return cfg.Classifier.RetryDelay(err, attempt)
}

func sessionStrategy(cfg Config, err error) Strategy {
	if cfg.Classifier != nil {
		if s, ok := cfg.Classifier.Strategy(err); ok {
			return s
		}
	}
	return cfg.Backoff
}

// fireOnRetry contains panics from the observability hook.
func fireOnRetry(fn func(attempt int, err error, delay time.Duration),
	attempt int, err error, delay time.Duration) {

	if fn == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	fn(attempt, err, delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
