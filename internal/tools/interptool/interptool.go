// Package interptool adapts the interpreter into a function-calling
// tool. The tool takes a single code string, runs it against a session
// and returns the execution result JSON as its content, so a model
// sees the same {status, stdout, stderr} object the HTTP API serves.
package interptool

import (
	"context"
	"encoding/json"

	"github.com/bitsnaps/open-creator/internal/interpreter"
	"github.com/bitsnaps/open-creator/internal/tools"
)

// Name is the identifier the tool is registered and invoked under.
const Name = "run_code"

const description = "Execute code in a persistent restricted sandbox. " +
	"The namespace survives across calls; the result carries status, " +
	"captured stdout and stderr."

// Runner executes source against a named session. An empty session
// name selects the default session.
type Runner interface {
	Execute(ctx context.Context, session, source string) (interpreter.Result, error)
}

// Tool exposes a Runner as a tools.Tool.
type Tool struct {
	runner Runner
}

type runArgs struct {
	Code string `json:"code" jsonschema:"description=The code to execute,required"`
}

// New creates the interpreter tool backed by runner.
func New(runner Runner) *Tool {
	return &Tool{runner: runner}
}

// Name returns the tool identifier.
func (t *Tool) Name() string { return Name }

// Description returns the tool description shown to models.
func (t *Tool) Description() string { return description }

// Parameters returns the single-parameter schema: a required code string.
func (t *Tool) Parameters() map[string]any {
	return tools.BuildSchema(runArgs{})
}

// Execute runs args["code"] against the session carried in ctx. Policy
// rejections, runtime faults and timeouts are not invocation errors:
// they come back as an error-status result in the content, which is
// what the calling model needs to see. The returned error is non-nil
// only when no execution took place.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (tools.ToolResult, error) {
	code, ok := args["code"].(string)
	if !ok {
		return tools.ToolResult{}, tools.NewInvalidArgsError(Name, "code must be a string", nil)
	}

	session := tools.SessionIDFromContext(ctx)
	result, err := t.runner.Execute(ctx, session, code)
	if result.Status == "" {
		return tools.ToolResult{}, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return tools.ToolResult{}, err
	}

	return tools.ToolResult{
		Content: string(payload),
		IsError: result.Status != interpreter.StatusSuccess,
		Metadata: map[string]any{
			"fault":       string(result.Fault),
			"duration_ms": result.Duration.Milliseconds(),
		},
	}, nil
}
