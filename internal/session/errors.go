package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for the session package.
var (
	// ErrNotFound is returned when a named session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrLimitExceeded is returned when creating a session would pass
	// the configured maximum.
	ErrLimitExceeded = errors.New("session limit exceeded")

	// ErrManagerClosed is returned for operations on a closed manager.
	ErrManagerClosed = errors.New("session manager is closed")
)

// NotFoundError identifies the missing session.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// Is allows errors.Is to match against ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Unwrap returns the underlying sentinel error.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// LimitError carries the limit that was hit.
type LimitError struct {
	Max int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("session limit exceeded: max %d", e.Max)
}

// Is allows errors.Is to match against ErrLimitExceeded.
func (e *LimitError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// Unwrap returns the underlying sentinel error.
func (e *LimitError) Unwrap() error {
	return ErrLimitExceeded
}
