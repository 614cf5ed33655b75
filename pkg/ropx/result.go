package ropx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Op is a unit of fallible work. Implementations should honor ctx
// cancellation; the engine only ever signals cancellation, it cannot stop
// native work that ignores the context.
type Op[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	isSuccess bool
	isCancel  bool
	hasResult bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		err:       nil,
		isSuccess: true,
		isCancel:  false,
		createdAt: time.Now().UTC(),
		hasResult: true,
		id:        uuid.New(),
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isSuccess: false,
		isCancel:  false,
		createdAt: time.Now().UTC(),
		hasResult: false,
		id:        uuid.New(),
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isSuccess: false,
		isCancel:  true,
		createdAt: time.Now().UTC(),
		hasResult: false,
		id:        uuid.New(),
	}
}

// CancelFrom re-types a result while keeping its identity and flags.
func CancelFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		err:       from.err,
		isSuccess: from.isSuccess,
		isCancel:  from.isCancel,
		createdAt: from.createdAt,
		hasResult: from.hasResult,
		id:        from.id,
	}
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

func (r Result[T]) IsFailure() bool {
	return !r.isSuccess
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

func (r Result[T]) HasResult() bool {
	return r.hasResult
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}

// Fold collapses an outcome into a single value using one of three handlers.
// It accepts any WithCancel implementation, Result included.
func Fold[T, Out any](r WithCancel[T],
	onSuccess func(r T) Out,
	onError func(err error) Out,
	onCancel func(err error) Out) Out {

	if r.IsSuccess() {
		return onSuccess(r.Result())
	} else if r.IsCancel() {
		return onCancel(r.Err())
	} else {
		return onError(r.Err())
	}
}

// Settlement is the outcome of waiting for all of N operations without
// failing fast. Successes and Failures partition All: every input resolves
// into exactly one of the two. All preserves input order when ordered
// execution was requested, otherwise completion order.
type Settlement[T any] struct {
	Successes []T
	Failures  []error
	All       []Result[T]
}

func (s *Settlement[T]) add(r Result[T]) {
	s.All = append(s.All, r)
	if r.IsSuccess() {
		s.Successes = append(s.Successes, r.Result())
	} else {
		s.Failures = append(s.Failures, r.Err())
	}
}

// Collect builds a settlement from already-resolved results.
func Collect[T any](results []Result[T]) *Settlement[T] {
	s := &Settlement[T]{}
	for _, r := range results {
		s.add(r)
	}
	return s
}

// Len reports the number of settled operations.
func (s *Settlement[T]) Len() int {
	return len(s.All)
}
