package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tools package.
var (
	// ErrToolNotFound is returned when a requested tool is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolAlreadyExists is returned when registering a tool under a
	// name that is already taken.
	ErrToolAlreadyExists = errors.New("tool already exists")

	// ErrInvalidArgs is returned when tool arguments are missing or of
	// the wrong type.
	ErrInvalidArgs = errors.New("invalid tool arguments")
)

// ToolNotFoundError identifies the missing tool.
type ToolNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// Is allows errors.Is to match against ErrToolNotFound.
func (e *ToolNotFoundError) Is(target error) bool {
	return target == ErrToolNotFound
}

// Unwrap returns the underlying sentinel error.
func (e *ToolNotFoundError) Unwrap() error {
	return ErrToolNotFound
}

// ToolAlreadyExistsError identifies the duplicated tool name.
type ToolAlreadyExistsError struct {
	Name string
}

// Error implements the error interface.
func (e *ToolAlreadyExistsError) Error() string {
	return fmt.Sprintf("tool already exists: %s", e.Name)
}

// Is allows errors.Is to match against ErrToolAlreadyExists.
func (e *ToolAlreadyExistsError) Is(target error) bool {
	return target == ErrToolAlreadyExists
}

// Unwrap returns the underlying sentinel error.
func (e *ToolAlreadyExistsError) Unwrap() error {
	return ErrToolAlreadyExists
}

// InvalidArgsError carries which tool rejected the arguments and why.
type InvalidArgsError struct {
	Tool    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *InvalidArgsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid arguments for tool %s: %s: %v", e.Tool, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid arguments for tool %s: %s", e.Tool, e.Message)
}

// Is allows errors.Is to match against ErrInvalidArgs.
func (e *InvalidArgsError) Is(target error) bool {
	return target == ErrInvalidArgs
}

// Unwrap returns the underlying cause or sentinel error.
func (e *InvalidArgsError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrInvalidArgs
}

// NewToolNotFoundError creates a ToolNotFoundError for the given name.
func NewToolNotFoundError(name string) error {
	return &ToolNotFoundError{Name: name}
}

// NewToolAlreadyExistsError creates a ToolAlreadyExistsError for the
// given name.
func NewToolAlreadyExistsError(name string) error {
	return &ToolAlreadyExistsError{Name: name}
}

// NewInvalidArgsError creates an InvalidArgsError with the given details.
func NewInvalidArgsError(tool, message string, cause error) error {
	return &InvalidArgsError{
		Tool:    tool,
		Message: message,
		Cause:   cause,
	}
}
