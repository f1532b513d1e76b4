package policy

import (
	"testing"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseForTest(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.ParseFile(nil, "", src, 0)
	require.NoError(t, err)
	return program
}

func TestWalkReachesNestedCalls(t *testing.T) {
	// Calls buried in places a per-type traversal tends to miss.
	sources := []string{
		"x = `${probe()}`",
		"var o = {[probe()]: 1}",
		"var o = {k: [1, {d: probe()}]}",
		"x = c ? probe() : 2",
		"x = (1, probe())",
		"f(...[probe()])",
	}
	for _, src := range sources {
		program := parseForTest(t, src)
		found := false
		walk(program, func(n ast.Node) bool {
			if call, ok := n.(*ast.CallExpression); ok {
				if ident, ok := call.Callee.(*ast.Identifier); ok && ident.Name.String() == "probe" {
					found = true
					return false
				}
			}
			return true
		})
		assert.True(t, found, "source %q", src)
	}
}

func TestWalkStopsWhenToldTo(t *testing.T) {
	program := parseForTest(t, "a()\nb()\nc()")
	calls := 0
	walk(program, func(n ast.Node) bool {
		if _, ok := n.(*ast.CallExpression); ok {
			calls++
			return false
		}
		return true
	})
	assert.Equal(t, 1, calls)
}

func TestWalkVisitsStatementsInOrder(t *testing.T) {
	program := parseForTest(t, "first = 1\nsecond(2)")
	var names []string
	walk(program, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Identifier); ok {
			names = append(names, ident.Name.String())
		}
		return true
	})
	assert.Equal(t, []string{"first", "second"}, names)
}
