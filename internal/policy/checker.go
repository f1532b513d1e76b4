// Package policy implements the static vetting gate applied to submitted
// source before execution. Vetting is purely syntactic: the source is
// parsed, never run, and the parse tree is walked against a small
// allow-list. The check fails closed: source that does not parse is
// rejected, and so is any construct that could mint new capabilities at
// run time (function and class definitions, require).
package policy

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

// Decision is the outcome of vetting one piece of source.
// Reason is empty exactly when Allowed is true.
type Decision struct {
	Allowed bool
	Reason  string
}

// Checker vets source text against the configured allow-lists.
// A Checker is immutable after construction and safe for concurrent use.
type Checker struct {
	functions map[string]struct{}
	methods   []string
}

// NewChecker builds a Checker from cfg. Empty lists are legal and mean
// no call of that class is permitted.
func NewChecker(cfg Config) *Checker {
	functions := make(map[string]struct{}, len(cfg.AllowedFunctions))
	for _, name := range cfg.AllowedFunctions {
		functions[name] = struct{}{}
	}
	return &Checker{
		functions: functions,
		methods:   append([]string(nil), cfg.AllowedMethods...),
	}
}

// Check produces a Decision for source under the given restriction state.
// Unrestricted source is always allowed without being parsed. Restricted
// source is parsed and walked; the first violation found short-circuits
// the walk. Checking is idempotent and has no side effects.
func (c *Checker) Check(source string, restricted bool) Decision {
	if !restricted {
		return Decision{Allowed: true}
	}

	program, err := parser.ParseFile(nil, "", source, 0)
	if err != nil {
		return Decision{Reason: fmt.Sprintf("source failed to parse: %v", err)}
	}

	v := &vetter{src: source, functions: c.functions, methods: c.methods}
	walk(program, v.vet)
	if v.reason != "" {
		return Decision{Reason: v.reason}
	}
	return Decision{Allowed: true}
}

// vetter inspects each node of the parse tree and records the first
// violation found.
type vetter struct {
	src       string
	functions map[string]struct{}
	methods   []string
	reason    string
}

// vet is the walk callback. It returns false once a violation has been
// recorded so the walk stops at the first offense.
func (v *vetter) vet(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.FunctionDeclaration:
		v.reason = "Usage of FunctionDeclaration nodes is not allowed"
	case *ast.ClassDeclaration:
		v.reason = "Usage of ClassDeclaration nodes is not allowed"
	case *ast.FunctionLiteral:
		v.reason = "Usage of FunctionLiteral nodes is not allowed"
	case *ast.ArrowFunctionLiteral:
		v.reason = "Usage of ArrowFunctionLiteral nodes is not allowed"
	case *ast.ClassLiteral:
		v.reason = "Usage of ClassLiteral nodes is not allowed"
	case *ast.CallExpression:
		v.vetCall(n.Callee, n)
	case *ast.NewExpression:
		v.vetCall(n.Callee, n)
	case *ast.TemplateLiteral:
		// A tagged template invokes its tag.
		if n.Tag != nil {
			v.vetCall(n.Tag, n)
		}
	}
	return v.reason == ""
}

// vetCall applies the allow-lists to one invocation. Arguments are not
// inspected here; nested calls are vetted when the walk reaches them.
func (v *vetter) vetCall(callee ast.Expression, call ast.Node) {
	cited := v.span(callee.Idx0(), call.Idx1())

	if ident, ok := callee.(*ast.Identifier); ok {
		name := ident.Name.String()
		// require smuggles in modules the same way an import would, so
		// it stays blocked even if someone adds it to AllowedFunctions.
		if name == "require" {
			v.reason = "Usage of require is not allowed: " + cited
			return
		}
		if _, ok := v.functions[name]; ok {
			return
		}
	}

	calleeText := v.text(callee)
	for _, method := range v.methods {
		if strings.Contains(calleeText, method) {
			return
		}
	}

	v.reason = "Usage of disallowed function/method: " + cited
}

// text returns the source slice covered by n.
func (v *vetter) text(n ast.Node) string {
	return v.span(n.Idx0(), n.Idx1())
}

// span returns the source between two parser indexes. Parser indexes
// are 1-based byte offsets into the submitted source.
func (v *vetter) span(from, to file.Idx) string {
	lo, hi := int(from)-1, int(to)-1
	if lo < 0 || hi > len(v.src) || lo >= hi {
		return ""
	}
	return v.src[lo:hi]
}
