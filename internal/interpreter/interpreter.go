// Package interpreter owns the persistent execution environment for
// submitted source. One Interpreter holds one namespace (the runtime's
// global object) that survives across calls, a one-way restriction
// latch, and the capped sink its print and console builtins write to.
//
// Every Execute call runs the same protocol: static policy check, split
// into top-level blocks, run the body blocks statement-style on a worker
// goroutine, then evaluate the final block for its value when it reads
// as an expression. Faults never cross the goroutine boundary as panics;
// they come back as data and are reformatted for the caller. Timeouts
// and context cancellation interrupt the runtime, so the worker exits
// instead of running on behind the caller's back.
//
// An Interpreter assumes one execution in flight at a time. It does not
// lock around the namespace; callers that share an instance across
// goroutines must serialize, which the session manager does.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"

	"github.com/bitsnaps/open-creator/internal/blocks"
	"github.com/bitsnaps/open-creator/internal/interperr"
	"github.com/bitsnaps/open-creator/internal/policy"
)

// Result statuses as they appear on the wire.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const timeoutMessage = "Code execution timed out"

// FaultKind classifies why an execution failed. It never appears on the
// wire; the JSON result carries status, stdout and stderr only.
type FaultKind string

const (
	FaultNone    FaultKind = ""
	FaultPolicy  FaultKind = "policy"
	FaultRuntime FaultKind = "runtime"
	FaultTimeout FaultKind = "timeout"
)

// Result is the outcome of one execution. Stdout always holds whatever
// output was captured before a fault or timeout; Stderr is empty exactly
// when Status is "success".
type Result struct {
	Status string `json:"status"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	Fault    FaultKind     `json:"-"`
	Duration time.Duration `json:"-"`
}

// Config holds tunables for one Interpreter.
type Config struct {
	// Timeout bounds the wall-clock time of a single call.
	Timeout time.Duration
	// MaxOutputBytes caps captured output per call.
	MaxOutputBytes int64
	// Policy carries the allow-lists applied once restriction is on.
	Policy policy.Config
}

// DefaultConfig returns the stock configuration: a 20 minute budget,
// a 1MB output cap and the default allow-lists.
func DefaultConfig() Config {
	return Config{
		Timeout:        20 * time.Minute,
		MaxOutputBytes: 1 << 20, // 1MB
		Policy:         policy.DefaultConfig(),
	}
}

// Interpreter executes submitted source against a persistent namespace.
type Interpreter struct {
	config  Config
	checker *policy.Checker
	logger  zerolog.Logger

	vm  *goja.Runtime
	out atomic.Pointer[sink]

	restricted atomic.Bool
	closed     atomic.Bool
}

// New creates an Interpreter with a fresh namespace. Zero values in cfg
// fall back to DefaultConfig; an entirely absent policy section gets the
// stock allow-lists, while explicitly empty lists are honored as-is.
func New(cfg Config, logger zerolog.Logger) *Interpreter {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaults.MaxOutputBytes
	}
	if cfg.Policy.AllowedFunctions == nil && cfg.Policy.AllowedMethods == nil {
		cfg.Policy = defaults.Policy
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	i := &Interpreter{
		config:  cfg,
		checker: policy.NewChecker(cfg.Policy),
		logger:  logger,
		vm:      vm,
	}
	i.registerBuiltins()
	return i
}

// Execute runs source under the current restriction state and returns a
// well-formed Result in every case. The error carries the taxonomy for
// errors.Is dispatch and is nil exactly when Result.Status is "success".
func (i *Interpreter) Execute(ctx context.Context, source string) (Result, error) {
	return i.execute(ctx, source, nil, i.restricted.Load())
}

// ExecuteWithSink is Execute with a live sink: w receives captured
// output as it is produced, before the call returns. The Result still
// carries the full capped capture; w gets the uncapped stream.
func (i *Interpreter) ExecuteWithSink(ctx context.Context, source string, w io.Writer) (Result, error) {
	return i.execute(ctx, source, w, i.restricted.Load())
}

// Setup runs source against the namespace with no policy applied, then
// latches restriction on for all future Execute calls. The latch engages
// even when the seed faults: failing open on a broken seed would leave
// the namespace unrestricted. Repeated Setup calls are permitted and
// always run unrestricted.
func (i *Interpreter) Setup(ctx context.Context, source string) error {
	if i.closed.Load() {
		return interperr.ErrClosed
	}
	defer i.restricted.Store(true)

	_, err := i.execute(ctx, source, nil, false)
	return err
}

// Bind exposes a host value in the namespace under name. Functions and
// struct methods become callable from submitted source; json tags map
// struct fields. Bind must not race an in-flight execution.
func (i *Interpreter) Bind(name string, value any) error {
	if i.closed.Load() {
		return interperr.ErrClosed
	}
	return i.vm.Set(name, value)
}

// Restricted reports whether the restriction latch has engaged.
func (i *Interpreter) Restricted() bool {
	return i.restricted.Load()
}

// Close permanently shuts the interpreter down. An in-flight execution
// is interrupted and reports ErrClosed. Close is idempotent.
func (i *Interpreter) Close() error {
	if i.closed.Swap(true) {
		return nil
	}
	i.vm.Interrupt("interpreter closed")
	return nil
}

func (i *Interpreter) execute(ctx context.Context, source string, mirror io.Writer, restricted bool) (Result, error) {
	start := time.Now()

	if i.closed.Load() {
		return Result{Status: StatusError, Stderr: "interpreter is closed"}, interperr.ErrClosed
	}

	if decision := i.checker.Check(source, restricted); !decision.Allowed {
		i.logger.Info().Str("reason", decision.Reason).Msg("execution rejected by policy")
		return Result{
			Status:   StatusError,
			Stderr:   decision.Reason,
			Fault:    FaultPolicy,
			Duration: time.Since(start),
		}, interperr.NewPolicyViolation(decision.Reason)
	}

	parts := blocks.Split(source)
	if len(parts) == 0 {
		return Result{Status: StatusSuccess, Duration: time.Since(start)}, nil
	}
	body, tail := parts[:len(parts)-1], parts[len(parts)-1]

	out := newSink(i.config.MaxOutputBytes, mirror)
	i.out.Store(out)

	runCtx, cancel := context.WithTimeout(ctx, i.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- i.run(body, tail, out)
	}()

	var runErr error
	select {
	case runErr = <-done:
	case <-runCtx.Done():
		// Interrupt the runtime and wait for the worker to observe it.
		// Joining keeps the namespace single-writer: the next call must
		// not start while this one is still inside the runtime.
		i.vm.Interrupt("execution interrupted: " + runCtx.Err().Error())
		<-done
		i.vm.ClearInterrupt()
		return i.interruptedResult(runCtx.Err(), out, start)
	}
	i.vm.ClearInterrupt()

	duration := time.Since(start)
	if runErr != nil {
		if i.closed.Load() {
			return Result{
				Status:   StatusError,
				Stdout:   out.String(),
				Stderr:   "interpreter is closed",
				Duration: duration,
			}, interperr.ErrClosed
		}
		trace := faultTrace(runErr)
		i.logger.Info().Dur("duration", duration).Msg("execution faulted")
		return Result{
			Status:   StatusError,
			Stdout:   out.String(),
			Stderr:   trace,
			Fault:    FaultRuntime,
			Duration: duration,
		}, interperr.NewRuntimeFault(trace)
	}

	i.logger.Debug().Dur("duration", duration).Int("output_bytes", out.Len()).Msg("execution completed")
	return Result{
		Status:   StatusSuccess,
		Stdout:   out.String(),
		Duration: duration,
	}, nil
}

// run executes the body blocks then the tail on the worker goroutine.
// Faults are returned as values, never propagated as panics.
func (i *Interpreter) run(body []blocks.Block, tail blocks.Block, out *sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &recoveredPanic{value: r}
		}
	}()

	for _, b := range body {
		if _, err := i.vm.RunString(b.Source); err != nil {
			return err
		}
	}

	if !blocks.IsExpression(tail.Source) {
		_, err := i.vm.RunString(tail.Source)
		return err
	}

	val, err := i.vm.RunString(tail.Source)
	if err != nil {
		return err
	}
	if val != nil && !goja.IsUndefined(val) && !goja.IsNull(val) {
		out.WriteString(val.String())
	}
	return nil
}

// interruptedResult maps an expired or canceled run context to a Result.
// Partial output is snapshotted after the worker has exited.
func (i *Interpreter) interruptedResult(cause error, out *sink, start time.Time) (Result, error) {
	duration := time.Since(start)
	if errors.Is(cause, context.DeadlineExceeded) {
		i.logger.Info().Dur("budget", i.config.Timeout).Msg("execution timed out")
		return Result{
			Status:   StatusError,
			Stdout:   out.String(),
			Stderr:   timeoutMessage,
			Fault:    FaultTimeout,
			Duration: duration,
		}, interperr.NewTimeout(i.config.Timeout)
	}

	i.logger.Info().AnErr("cause", cause).Msg("execution canceled")
	return Result{
		Status:   StatusError,
		Stdout:   out.String(),
		Stderr:   "execution canceled",
		Fault:    FaultTimeout,
		Duration: duration,
	}, cause
}

// faultTrace renders a fault for the stderr field. Script exceptions
// keep their full stack; everything else uses the error text.
func faultTrace(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exc.String()
	}
	return err.Error()
}

// recoveredPanic wraps a panic recovered on the worker goroutine.
type recoveredPanic struct {
	value any
}

func (e *recoveredPanic) Error() string {
	return fmt.Sprintf("panic during execution: %v", e.value)
}
