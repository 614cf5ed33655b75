package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Strategy selects the backoff-delay formula between attempts.
type Strategy int

const (
	// Exponential grows the delay as initial * 2^(attempt-1), capped at MaxDelay.
	Exponential Strategy = iota
	// Linear grows the delay as initial * attempt, capped at MaxDelay.
	Linear
	// Constant always waits the initial delay.
	Constant
	// Decorrelated picks uniformly between the initial delay and three times
	// the previous delay, capped at MaxDelay.
	Decorrelated
	// FullJitter picks uniformly in [0, exponential delay].
	FullJitter
	// EqualJitter picks half the exponential delay plus a uniform half.
	EqualJitter
)

func (s Strategy) String() string {
	switch s {
	case Exponential:
		return "exponential"
	case Linear:
		return "linear"
	case Constant:
		return "constant"
	case Decorrelated:
		return "decorrelated"
	case FullJitter:
		return "full-jitter"
	case EqualJitter:
		return "equal-jitter"
	default:
		return "unknown"
	}
}

// Backoff produces inter-retry delays. Sources are stateful; obtain a
// fresh one per retry session via NewBackoff.
type Backoff = backoff.BackOff

// NewBackoff builds a delay source for one retry session.
func NewBackoff(s Strategy, cfg Config) Backoff {
	initial := cfg.InitialDelay
	if initial < 0 {
		initial = 0
	}
	cap := maxDelay(cfg)

	switch s {
	case Constant:
		return backoff.NewConstantBackOff(initial)
	case Linear:
		return &linearBackOff{initial: initial, cap: cap}
	case Decorrelated:
		return &decorrelatedBackOff{initial: initial, cap: cap}
	case FullJitter:
		return &fullJitterBackOff{initial: initial, cap: cap}
	case EqualJitter:
		return &equalJitterBackOff{initial: initial, cap: cap}
	default:
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = initial
		bo.RandomizationFactor = 0
		bo.Multiplier = 2
		bo.MaxInterval = cap
		bo.MaxElapsedTime = 0
		bo.Reset()
		return bo
	}
}

func maxDelay(cfg Config) time.Duration {
	if cfg.MaxDelay > 0 {
		return cfg.MaxDelay
	}
	return time.Duration(math.MaxInt64)
}

// expDelay computes initial * 2^(attempt-1) with overflow protection.
func expDelay(initial time.Duration, attempt int, cap time.Duration) time.Duration {
	d := initial
	for i := 1; i < attempt; i++ {
		if d >= cap/2 {
			return cap
		}
		d *= 2
	}
	return min(d, cap)
}

type linearBackOff struct {
	initial time.Duration
	cap     time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	if b.initial > 0 && b.attempt > int(b.cap/b.initial) {
		return b.cap
	}
	return min(time.Duration(b.attempt)*b.initial, b.cap)
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

type decorrelatedBackOff struct {
	initial time.Duration
	cap     time.Duration
	prev    time.Duration
}

func (b *decorrelatedBackOff) NextBackOff() time.Duration {
	if b.prev <= 0 {
		b.prev = b.initial
		return min(b.prev, b.cap)
	}
	span := 3*b.prev - b.initial
	if span <= 0 {
		return min(b.initial, b.cap)
	}
	b.prev = min(b.initial+time.Duration(rand.Int63n(int64(span)+1)), b.cap)
	return b.prev
}

func (b *decorrelatedBackOff) Reset() { b.prev = 0 }

type fullJitterBackOff struct {
	initial time.Duration
	cap     time.Duration
	attempt int
}

func (b *fullJitterBackOff) NextBackOff() time.Duration {
	b.attempt++
	base := expDelay(b.initial, b.attempt, b.cap)
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base) + 1))
}

func (b *fullJitterBackOff) Reset() { b.attempt = 0 }

type equalJitterBackOff struct {
	initial time.Duration
	cap     time.Duration
	attempt int
}

func (b *equalJitterBackOff) NextBackOff() time.Duration {
	b.attempt++
	base := expDelay(b.initial, b.attempt, b.cap)
	if base <= 0 {
		return 0
	}
	half := base / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func (b *equalJitterBackOff) Reset() { b.attempt = 0 }

// applyJitter perturbs delay uniformly within +/- jitter*delay, floored at
// zero. jitter outside [0, 1] is clamped.
func applyJitter(delay time.Duration, jitter float64) time.Duration {
	if delay <= 0 || jitter <= 0 {
		return delay
	}
	if jitter > 1 {
		jitter = 1
	}
	offset := (rand.Float64()*2 - 1) * jitter * float64(delay)
	return max(delay+time.Duration(offset), 0)
}
