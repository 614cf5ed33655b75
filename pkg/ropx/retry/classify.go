package retry

import (
	"time"

	"github.com/ib-77/ropx/pkg/ropx"
)

// Recoverable classifies whether and how an error should be retried. A
// classifier can override the per-call attempt budget, delay, and backoff
// strategy for specific error classes.
type Recoverable interface {
	// Recoverable reports whether err is worth retrying at all.
	Recoverable(err error) bool
	// RetryDelay returns an error-specific delay for the given attempt.
	// A non-positive value delegates to the backoff source.
	RetryDelay(err error, attempt int) time.Duration
	// MaxAttempts returns an error-specific attempt budget.
	// A non-positive value delegates to the config.
	MaxAttempts(err error) int
	// Strategy returns an error-specific backoff strategy.
	// ok=false delegates to the config.
	Strategy(err error) (Strategy, bool)
}

// DefaultClassifier retries everything not explicitly marked permanent and
// overrides nothing else.
type DefaultClassifier struct{}

func (DefaultClassifier) Recoverable(err error) bool { return ropx.IsTransient(err) }

func (DefaultClassifier) RetryDelay(err error, attempt int) time.Duration { return 0 }

func (DefaultClassifier) MaxAttempts(err error) int { return 0 }

func (DefaultClassifier) Strategy(err error) (Strategy, bool) { return 0, false }
