package ropx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPanicError_CapturesStack(t *testing.T) {
	t.Parallel()

	pe := NewPanicError(FaultException, "boom")
	if pe.Kind != FaultException {
		t.Fatalf("expected exception kind, got %v", pe.Kind)
	}
	if pe.Stack == "" {
		t.Fatal("expected stack to be captured")
	}
	if !strings.Contains(pe.Error(), "boom") {
		t.Fatalf("expected message to contain panic value: %s", pe.Error())
	}
}

func TestTransientPermanentClassification(t *testing.T) {
	t.Parallel()

	base := errors.New("io glitch")

	if !IsTransient(base) {
		t.Fatal("unmarked errors should be treated as transient")
	}
	if !IsTransient(Transient(base)) {
		t.Fatal("transient-wrapped error should be transient")
	}
	if IsTransient(Permanent(base)) {
		t.Fatal("permanent-wrapped error should not be transient")
	}
	if !errors.Is(Permanent(base), base) {
		t.Fatal("wrapping should preserve the cause")
	}
	if Transient(nil) != nil || Permanent(nil) != nil {
		t.Fatal("wrapping nil should stay nil")
	}
}

func TestAggregateError_Unwrap(t *testing.T) {
	t.Parallel()

	e1, e2 := errors.New("a"), errors.New("b")
	agg := &AggregateError{Errs: []error{e1, e2}}

	if !errors.Is(agg, e1) || !errors.Is(agg, e2) {
		t.Fatal("expected errors.Is to reach aggregated errors")
	}
	if got := Errors(agg); len(got) != 2 {
		t.Fatalf("expected 2 flattened errors, got %d", len(got))
	}
}

func TestMaxRetriesError(t *testing.T) {
	t.Parallel()

	last := errors.New("still down")
	e := &MaxRetriesError{Attempts: 3, LastErr: last}

	if !errors.Is(e, last) {
		t.Fatal("expected unwrap to reach last error")
	}
	if !strings.Contains(e.Error(), "3 attempts") {
		t.Fatalf("unexpected message: %s", e.Error())
	}
}

func TestCancellationAndTimeoutPredicates(t *testing.T) {
	t.Parallel()

	if !IsCancellation(context.Canceled) || !IsCancellation(ErrCancelled) {
		t.Fatal("expected cancellation to be recognized")
	}
	if !IsTimeout(context.DeadlineExceeded) || !IsTimeout(ErrTimeout) {
		t.Fatal("expected timeout to be recognized")
	}
	if IsTimeout(ErrCancelled) || IsCancellation(ErrTimeout) {
		t.Fatal("predicates should not cross-match")
	}
}
