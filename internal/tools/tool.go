// Package tools defines the function-calling surface the interpreter is
// exposed through. A Tool carries a name, a human-readable description
// and a JSON Schema for its arguments; a Registry holds the set offered
// to callers. The gateway serves tool definitions so a language model
// can discover and invoke them.
package tools

import (
	"context"
	"fmt"
)

// Tool is a callable capability described by a JSON Schema.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string

	// Description returns a human-readable explanation of the tool.
	Description() string

	// Parameters returns the JSON Schema describing the arguments.
	Parameters() map[string]any

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]any) (ToolResult, error)
}

// ToolResult is the outcome of a tool execution. Content is what the
// caller (typically a model) sees; IsError marks results the caller
// should treat as failures without the invocation itself having failed.
type ToolResult struct {
	Content  string         `json:"content"`
	IsError  bool           `json:"is_error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewSuccessResult creates a successful result with the given content.
func NewSuccessResult(content string) ToolResult {
	return ToolResult{Content: content}
}

// NewErrorResult creates an error result with the given content.
func NewErrorResult(content string) ToolResult {
	return ToolResult{Content: content, IsError: true}
}

// NewResultWithMetadata creates a successful result carrying metadata.
func NewResultWithMetadata(content string, metadata map[string]any) ToolResult {
	return ToolResult{Content: content, Metadata: metadata}
}

// String renders the result for logs and transcripts.
func (r ToolResult) String() string {
	if r.IsError {
		return fmt.Sprintf("[error] %s", r.Content)
	}
	return r.Content
}

// Definition is the serializable description of a tool, the shape
// served to function-calling clients.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Describe builds the Definition for a tool.
func Describe(t Tool) Definition {
	return Definition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// BaseTool provides a trivial Tool implementation backed by fields.
// Embed it when a tool's identity is static and only Execute varies.
type BaseTool struct {
	ToolName        string
	ToolDescription string
	ToolParameters  map[string]any
}

// Name returns the tool name.
func (b *BaseTool) Name() string { return b.ToolName }

// Description returns the tool description.
func (b *BaseTool) Description() string { return b.ToolDescription }

// Parameters returns the parameter schema, defaulting to an empty
// object schema when unset.
func (b *BaseTool) Parameters() map[string]any {
	if b.ToolParameters == nil {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}
	return b.ToolParameters
}

type contextKey string

const sessionIDKey contextKey = "session_id"

// WithSessionID returns a context carrying the session the tool call
// should execute against.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext extracts the session ID, empty when unset.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}
