package ropx

import (
	"errors"
	"testing"
	"time"
)

func TestSuccess(t *testing.T) {
	t.Parallel()
	r := Success(42)

	if !r.IsSuccess() || r.IsFailure() || r.IsCancel() {
		t.Fatalf("expected success, got: success=%v cancel=%v", r.IsSuccess(), r.IsCancel())
	}
	if r.Result() != 42 {
		t.Fatalf("expected 42, got %v", r.Result())
	}
	if r.Err() != nil {
		t.Fatalf("expected nil error, got %v", r.Err())
	}
	if !r.HasResult() {
		t.Fatal("expected HasResult")
	}
	if r.CreatedAt().IsZero() {
		t.Fatal("expected createdAt to be set")
	}
}

func TestFail(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	r := Fail[int](err)

	if r.IsSuccess() || !r.IsFailure() || r.IsCancel() {
		t.Fatalf("expected failure, got: success=%v cancel=%v", r.IsSuccess(), r.IsCancel())
	}
	if !errors.Is(r.Err(), err) {
		t.Fatalf("expected boom, got %v", r.Err())
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()
	r := Cancel[int](ErrCancelled)

	if !r.IsCancel() || r.IsSuccess() {
		t.Fatalf("expected cancel, got: success=%v cancel=%v", r.IsSuccess(), r.IsCancel())
	}
}

func TestCancelFrom_KeepsIdentity(t *testing.T) {
	t.Parallel()
	src := Cancel[int](ErrCancelled)
	dst := CancelFrom[int, string](src)

	if dst.Id() != src.Id() {
		t.Fatal("expected identity to be preserved")
	}
	if !dst.IsCancel() || !errors.Is(dst.Err(), ErrCancelled) {
		t.Fatalf("expected cancel with ErrCancelled, got %v", dst.Err())
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	onSuccess := func(v int) string { return "ok" }
	onError := func(err error) string { return "err" }
	onCancel := func(err error) string { return "cancel" }

	if got := Fold(Success(1), onSuccess, onError, onCancel); got != "ok" {
		t.Fatalf("expected ok, got %v", got)
	}
	if got := Fold(Fail[int](errors.New("x")), onSuccess, onError, onCancel); got != "err" {
		t.Fatalf("expected err, got %v", got)
	}
	if got := Fold(Cancel[int](ErrCancelled), onSuccess, onError, onCancel); got != "cancel" {
		t.Fatalf("expected cancel, got %v", got)
	}
}

// staleOutcome is a minimal WithCancel implementation that is not a Result.
type staleOutcome struct{}

func (staleOutcome) Result() int          { return 0 }
func (staleOutcome) CreatedAt() time.Time { return time.Time{} }
func (staleOutcome) Err() error           { return ErrTimeout }
func (staleOutcome) IsSuccess() bool      { return false }
func (staleOutcome) IsCancel() bool       { return false }

func TestFold_AcceptsAnyOutcome(t *testing.T) {
	t.Parallel()

	got := Fold[int](staleOutcome{},
		func(v int) string { return "ok" },
		func(err error) string { return err.Error() },
		func(err error) string { return "cancel" },
	)
	if got != ErrTimeout.Error() {
		t.Fatalf("expected the failure handler to run, got %q", got)
	}
}

func TestCollect_Partition(t *testing.T) {
	t.Parallel()

	results := []Result[int]{
		Success(1),
		Fail[int](errors.New("a")),
		Success(3),
		Fail[int](errors.New("b")),
	}

	s := Collect(results)

	if s.Len() != 4 {
		t.Fatalf("expected 4 settled, got %d", s.Len())
	}
	if len(s.Successes)+len(s.Failures) != len(s.All) {
		t.Fatalf("partition broken: %d + %d != %d", len(s.Successes), len(s.Failures), len(s.All))
	}
	if len(s.Successes) != 2 || s.Successes[0] != 1 || s.Successes[1] != 3 {
		t.Fatalf("unexpected successes: %v", s.Successes)
	}
	if len(s.Failures) != 2 {
		t.Fatalf("unexpected failures: %v", s.Failures)
	}
}
