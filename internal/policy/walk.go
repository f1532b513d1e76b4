package policy

import (
	"reflect"

	"github.com/dop251/goja/ast"
)

// walk visits every node reachable from root in depth-first order,
// calling visit for each. visit returns false to abort the walk.
//
// Children are discovered by reflection rather than a hand-kept switch
// over node types. The vetting gate must fail closed, and a traversal
// that names node types goes silently blind on any syntax it omits;
// reflection cannot skip a subtree, whatever shape the parser produces.
func walk(root ast.Node, visit func(ast.Node) bool) {
	w := walker{visit: visit}
	w.value(reflect.ValueOf(root))
}

type walker struct {
	visit func(ast.Node) bool
	done  bool
}

func (w *walker) value(v reflect.Value) {
	if w.done || !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Interface:
		if !v.IsNil() {
			w.value(v.Elem())
		}
	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		// Nodes are visited as pointers, whether reached through an
		// interface field or a concrete one. Unexported fields cannot
		// be interfaced; their pointees are still descended into.
		if v.CanInterface() {
			if n, ok := v.Interface().(ast.Node); ok && !w.visit(n) {
				w.done = true
				return
			}
		}
		w.value(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField() && !w.done; i++ {
			w.value(v.Field(i))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len() && !w.done; i++ {
			w.value(v.Index(i))
		}
	}
}
