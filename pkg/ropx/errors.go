package ropx

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrTimeout reports that an operation or an overall wait budget expired.
	ErrTimeout = errors.New("ropx: timeout")

	// ErrCancelled reports that a handle was cancelled before completion.
	ErrCancelled = errors.New("ropx: cancelled")

	// ErrEmptyRace is returned when a race is started with no alternatives.
	ErrEmptyRace = errors.New("ropx: race requires at least one operation")

	// ErrAllFailed reports that every alternative of a first-success scan failed.
	ErrAllFailed = errors.New("ropx: all operations failed")
)

// FaultKind classifies how an operation terminated abnormally.
type FaultKind int

const (
	// FaultException is a recovered panic.
	FaultException FaultKind = iota
	// FaultAbort is a goroutine that terminated without publishing a result,
	// e.g. via runtime.Goexit.
	FaultAbort
)

func (k FaultKind) String() string {
	switch k {
	case FaultException:
		return "exception"
	case FaultAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// PanicError wraps a fault recovered at the invocation boundary together
// with the goroutine stack captured at the point of the fault.
type PanicError struct {
	Kind  FaultKind
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v\n\n%s", e.Kind, e.Value, e.Stack)
}

// NewPanicError captures the current stack for a recovered panic value.
func NewPanicError(kind FaultKind, v any) *PanicError {
	// runtime.Stack truncates gracefully if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Kind:  kind,
		Value: v,
		Stack: string(buf[:n]),
	}
}

// TransientError marks an error as retry-eligible for classifiers.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an error as not retry-eligible for classifiers.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Transient wraps err as retry-eligible.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent wraps err as not retry-eligible.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsTransient reports whether err is marked retry-eligible. Unmarked errors
// are treated as transient; only an explicit PermanentError opts out.
func IsTransient(err error) bool {
	var pe *PermanentError
	return !errors.As(err, &pe)
}

// AggregateError collects multiple failures, e.g. from a lost race or a
// double-failed hedge. Errs is in completion order.
type AggregateError struct {
	Errs []error
}

func (e *AggregateError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d operations failed: [%s]", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *AggregateError) Unwrap() []error { return e.Errs }

// MaxRetriesError reports retry exhaustion together with the last failure.
type MaxRetriesError struct {
	Attempts int
	LastErr  error
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("max retries exceeded after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *MaxRetriesError) Unwrap() error { return e.LastErr }

// Errors flattens err into its component errors, unwrapping joined and
// aggregate errors one level.
func Errors(err error) []error {
	if IsNil(err) {
		return []error{}
	}

	e, ok := err.(interface{ Unwrap() []error })
	if ok {
		return e.Unwrap()
	}

	return []error{err}
}

// IsCancellation reports whether err stems from context cancellation or an
// explicit handle cancel.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled)
}

// IsTimeout reports whether err stems from an expired deadline or budget.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout)
}
