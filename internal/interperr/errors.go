// Package interperr provides error types for the interpreter package.
// This package exists to avoid import cycles between interpreter and the
// layers that classify its failures (tools, session, gateway).
package interperr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for interpreter operations.
var (
	// ErrClosed indicates the interpreter has been closed and can no
	// longer execute code.
	ErrClosed = errors.New("interpreter: closed")

	// ErrEmptySource indicates an execution request carried no source text.
	ErrEmptySource = errors.New("interpreter: empty source")
)

// PolicyViolationError indicates submitted source was rejected by the
// static policy check before any of it ran.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("interpreter: policy violation: %s", e.Reason)
}

// Is implements errors.Is for PolicyViolationError.
func (e *PolicyViolationError) Is(target error) bool {
	_, ok := target.(*PolicyViolationError)
	return ok
}

// ErrPolicyViolation is a sentinel for errors.Is matching.
var ErrPolicyViolation = &PolicyViolationError{}

// NewPolicyViolation creates a PolicyViolationError with the given reason.
func NewPolicyViolation(reason string) *PolicyViolationError {
	return &PolicyViolationError{Reason: reason}
}

// RuntimeFaultError indicates vetted code raised a fault while running.
// Trace carries the full formatted fault including the script stack.
type RuntimeFaultError struct {
	Trace string
}

func (e *RuntimeFaultError) Error() string {
	return fmt.Sprintf("interpreter: runtime fault: %s", e.Trace)
}

// Is implements errors.Is for RuntimeFaultError.
func (e *RuntimeFaultError) Is(target error) bool {
	_, ok := target.(*RuntimeFaultError)
	return ok
}

// ErrRuntimeFault is a sentinel for errors.Is matching.
var ErrRuntimeFault = &RuntimeFaultError{}

// NewRuntimeFault creates a RuntimeFaultError carrying the fault trace.
func NewRuntimeFault(trace string) *RuntimeFaultError {
	return &RuntimeFaultError{Trace: trace}
}

// TimeoutError indicates execution exceeded its wall-clock budget.
// The runtime is interrupted when this is reported, so the worker does
// not keep running behind the caller's back.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("interpreter: execution exceeded %s budget", e.Budget)
}

// Is implements errors.Is for TimeoutError. It also matches
// context.DeadlineExceeded so callers can treat engine timeouts and
// context deadlines uniformly.
func (e *TimeoutError) Is(target error) bool {
	if target == context.DeadlineExceeded {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// ErrTimeout is a sentinel for errors.Is matching.
var ErrTimeout = &TimeoutError{}

// NewTimeout creates a TimeoutError for the given budget.
func NewTimeout(budget time.Duration) *TimeoutError {
	return &TimeoutError{Budget: budget}
}
