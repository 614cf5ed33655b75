package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/ropx/pkg/ropx"
)

func TestDo_Convergence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	glitch := errors.New("glitch")

	var calls atomic.Int32
	var delays []time.Duration

	op := func(ctx context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", glitch
		}
		return "ok", nil
	}

	r := Do(ctx, op, Config{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		Backoff:      Constant,
		Jitter:       0,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	})

	require.True(t, r.IsSuccess())
	assert.Equal(t, "ok", r.Result())
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, delays, 2, "exactly two retries scheduled")
	assert.Equal(t, 10*time.Millisecond, delays[0])
	assert.Equal(t, 10*time.Millisecond, delays[1])
}

func TestDo_Exhaustion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	down := errors.New("still down")

	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, down
	}

	r := Do(ctx, op, Config{MaxAttempts: 3, InitialDelay: time.Millisecond})

	require.True(t, r.IsFailure())
	assert.Equal(t, int32(3), calls.Load(), "exactly maxAttempts invocations")

	var mre *ropx.MaxRetriesError
	require.ErrorAs(t, r.Err(), &mre)
	assert.Equal(t, 3, mre.Attempts)
	assert.ErrorIs(t, mre.LastErr, down)
}

func TestDo_NonRecoverableFailsFast(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fatal := errors.New("schema mismatch")

	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, ropx.Permanent(fatal)
	}

	r := Do(ctx, op, Config{MaxAttempts: 5, InitialDelay: time.Millisecond})

	require.True(t, r.IsFailure())
	assert.Equal(t, int32(1), calls.Load(), "no retry for a permanent failure")
	assert.ErrorIs(t, r.Err(), fatal)

	var mre *ropx.MaxRetriesError
	assert.False(t, errors.As(r.Err(), &mre), "non-recoverable is not exhaustion")
}

func TestDo_ShouldRetryOverride(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("nope")
	}

	r := Do(ctx, op, Config{
		MaxAttempts: 5,
		ShouldRetry: func(err error) bool { return false },
	})

	require.True(t, r.IsFailure())
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_ClassifierDelayWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var delays []time.Duration
	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		if calls.Add(1) < 2 {
			return 0, errors.New("throttled")
		}
		return 1, nil
	}

	r := Do(ctx, op, Config{
		MaxAttempts:  3,
		InitialDelay: time.Minute, // would be the backoff delay
		Backoff:      Constant,
		Classifier:   fixedDelayClassifier{delay: 5 * time.Millisecond},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	})

	require.True(t, r.IsSuccess())
	require.Len(t, delays, 1)
	assert.Equal(t, 5*time.Millisecond, delays[0], "classifier delay takes precedence")
}

func TestDo_ClassifierMaxAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("down")
	}

	r := Do(ctx, op, Config{
		MaxAttempts:  10,
		InitialDelay: time.Millisecond,
		Classifier:   cappedClassifier{attempts: 2},
	})

	require.True(t, r.IsFailure())
	assert.Equal(t, int32(2), calls.Load(), "classifier budget overrides config")
}

func TestDo_HookPanicContained(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		if calls.Add(1) < 2 {
			return 0, errors.New("flaky")
		}
		return 7, nil
	}

	r := Do(ctx, op, Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			panic("broken hook")
		},
	})

	require.True(t, r.IsSuccess())
	assert.Equal(t, 7, r.Result())
}

func TestDo_CancelDuringSleep(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	op := func(ctx context.Context) (int, error) {
		return 0, errors.New("down")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	r := Do(ctx, op, Config{MaxAttempts: 5, InitialDelay: time.Second})
	require.True(t, r.IsCancel())
	assert.ErrorIs(t, r.Err(), context.Canceled)
}

func TestDo_PanickingOperationIsRetried(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		if calls.Add(1) < 2 {
			panic("transient fault")
		}
		return 3, nil
	}

	r := Do(ctx, op, Config{MaxAttempts: 3, InitialDelay: time.Millisecond})
	require.True(t, r.IsSuccess())
	assert.Equal(t, 3, r.Result())
}

type fixedDelayClassifier struct {
	delay time.Duration
}

func (c fixedDelayClassifier) Recoverable(err error) bool { return true }
func (c fixedDelayClassifier) RetryDelay(err error, attempt int) time.Duration {
	return c.delay
}
func (c fixedDelayClassifier) MaxAttempts(err error) int        { return 0 }
func (c fixedDelayClassifier) Strategy(err error) (Strategy, bool) { return 0, false }

type cappedClassifier struct {
	attempts int
}

func (c cappedClassifier) Recoverable(err error) bool                     { return true }
func (c cappedClassifier) RetryDelay(err error, attempt int) time.Duration { return 0 }
func (c cappedClassifier) MaxAttempts(err error) int                      { return c.attempts }
func (c cappedClassifier) Strategy(err error) (Strategy, bool)            { return 0, false }
