package interperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrClosed(t *testing.T) {
	if ErrClosed.Error() != "interpreter: closed" {
		t.Errorf("unexpected error message: %s", ErrClosed.Error())
	}
}

func TestErrEmptySource(t *testing.T) {
	if ErrEmptySource.Error() != "interpreter: empty source" {
		t.Errorf("unexpected error message: %s", ErrEmptySource.Error())
	}
}

func TestPolicyViolationError(t *testing.T) {
	err := NewPolicyViolation("Usage of require is not allowed: require('fs')")
	want := "interpreter: policy violation: Usage of require is not allowed: require('fs')"
	if err.Error() != want {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if !errors.Is(err, ErrPolicyViolation) {
		t.Error("PolicyViolationError should match ErrPolicyViolation")
	}
	if errors.Is(err, ErrRuntimeFault) {
		t.Error("PolicyViolationError must not match ErrRuntimeFault")
	}

	var pv *PolicyViolationError
	if !errors.As(err, &pv) || pv.Reason == "" {
		t.Error("errors.As should recover the reason")
	}
}

func TestRuntimeFaultError(t *testing.T) {
	err := NewRuntimeFault("TypeError: Cannot read property 'x' of null")
	if !errors.Is(err, ErrRuntimeFault) {
		t.Error("RuntimeFaultError should match ErrRuntimeFault")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("RuntimeFaultError must not match ErrTimeout")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeout(100 * time.Millisecond)
	if err.Error() != "interpreter: execution exceeded 100ms budget" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if !errors.Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should match context.DeadlineExceeded")
	}
	if errors.Is(err, ErrPolicyViolation) {
		t.Error("TimeoutError must not match ErrPolicyViolation")
	}
}

func TestWrappedMatching(t *testing.T) {
	err := fmt.Errorf("session default: %w", NewTimeout(time.Second))

	if !errors.Is(err, ErrTimeout) {
		t.Error("wrapped TimeoutError should still match ErrTimeout")
	}

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatal("errors.As should unwrap to *TimeoutError")
	}
	if te.Budget != time.Second {
		t.Errorf("recovered budget = %v, want 1s", te.Budget)
	}
}
