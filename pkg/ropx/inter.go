package ropx

import "time"

// ResultProvider exposes the value side of an outcome.
type ResultProvider[T any] interface {
	// Result returns the successful value, or the zero value otherwise.
	Result() T
	// CreatedAt is the outcome's construction time (UTC).
	CreatedAt() time.Time
}

// WithError is an outcome that can report failure.
type WithError[T any] interface {
	ResultProvider[T]
	// Err returns the error when the outcome is not a success.
	Err() error
	// IsSuccess reports whether a value is present.
	IsSuccess() bool
}

// WithCancel is a full three-state outcome: success, failure, or cancelled.
// Result implements it; Fold consumes it.
type WithCancel[T any] interface {
	WithError[T]
	// IsCancel reports whether the work was abandoned rather than failed.
	IsCancel() bool
}
