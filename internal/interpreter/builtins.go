package interpreter

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// registerBuiltins installs print and console on the runtime. Both write
// a space-joined line to the interpreter's current sink; there is no
// separate error stream inside the namespace, stderr is reserved for
// faults. The handlers load the sink on every call because it is swapped
// per execution.
func (i *Interpreter) registerBuiltins() {
	print := func(call goja.FunctionCall) goja.Value {
		if s := i.out.Load(); s != nil {
			s.WriteLine(formatArgs(call.Arguments))
		}
		return goja.Undefined()
	}

	_ = i.vm.Set("print", print)

	console := i.vm.NewObject()
	for _, level := range []string{"log", "debug", "info", "warn", "error"} {
		_ = console.Set(level, print)
	}
	_ = i.vm.Set("console", console)
}

// formatArgs joins call arguments with spaces, console.log style.
func formatArgs(args []goja.Value) string {
	if len(args) == 0 {
		return ""
	}
	out := formatValue(args[0])
	for _, arg := range args[1:] {
		out += " " + formatValue(arg)
	}
	return out
}

// formatValue renders one value for output capture. Strings print bare,
// composites render as JSON so printed objects stay readable.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}

	switch val := v.Export().(type) {
	case string:
		return val
	case map[string]interface{}, []interface{}:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
