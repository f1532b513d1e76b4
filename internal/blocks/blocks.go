// Package blocks partitions source text into top-level statement groups.
// Groups are cut at the byte offsets where top-level statements begin, so
// nested constructs are never severed and concatenating all groups
// reproduces the input exactly. The final group is distinguished: the
// engine may evaluate it for its value instead of running it as a
// statement.
package blocks

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// Block is one top-level statement group. Source holds the exact byte
// range of the input covered by the group, surrounding trivia included.
type Block struct {
	Source string
	Final  bool
}

// Split partitions source into blocks, one per top-level statement.
// Text before the first statement belongs to the first block; text after
// a statement, up to where the next one begins, stays with that
// statement's block. Source with no statements yields nil. Source that
// does not parse yields a single block holding the whole text, leaving
// the syntax error to surface at execution.
func Split(source string) []Block {
	program, err := parser.ParseFile(nil, "", source, 0)
	if err != nil {
		return []Block{{Source: source, Final: true}}
	}
	if len(program.Body) == 0 {
		return nil
	}

	cuts := make([]int, 0, len(program.Body)+1)
	cuts = append(cuts, 0)
	for i, stmt := range program.Body {
		if i == 0 {
			continue
		}
		cuts = append(cuts, offset(stmt, len(source)))
	}
	cuts = append(cuts, len(source))

	out := make([]Block, 0, len(program.Body))
	for i := 0; i < len(cuts)-1; i++ {
		out = append(out, Block{Source: source[cuts[i]:cuts[i+1]]})
	}
	out[len(out)-1].Final = true
	return out
}

// IsExpression reports whether source is a single expression statement
// whose value is worth capturing. Assignments are expressions in this
// language, but a trailing assignment reads as a statement, so they are
// excluded here.
func IsExpression(source string) bool {
	program, err := parser.ParseFile(nil, "", source, 0)
	if err != nil {
		return false
	}
	if len(program.Body) != 1 {
		return false
	}
	expr, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	if _, assign := expr.Expression.(*ast.AssignExpression); assign {
		return false
	}
	return true
}

// offset converts a statement's 1-based parser index to a byte offset,
// clamped to the source bounds.
func offset(stmt ast.Statement, limit int) int {
	at := int(stmt.Idx0()) - 1
	if at < 0 {
		return 0
	}
	if at > limit {
		return limit
	}
	return at
}
