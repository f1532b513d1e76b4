package blocks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "empty source",
			source: "",
			want:   nil,
		},
		{
			name:   "whitespace only",
			source: "  \n\t\n",
			want:   nil,
		},
		{
			name:   "comment only",
			source: "// nothing to run\n",
			want:   nil,
		},
		{
			name:   "single statement",
			source: "x = 1",
			want:   []string{"x = 1"},
		},
		{
			name:   "assignment then expression",
			source: "x = 5\nx + 1",
			want:   []string{"x = 5\n", "x + 1"},
		},
		{
			name:   "statements on one line",
			source: "x = 1; y = 2",
			want:   []string{"x = 1; ", "y = 2"},
		},
		{
			name:   "multi-line construct stays whole",
			source: "if (x) {\n  y = 1\n}\nz = 2",
			want:   []string{"if (x) {\n  y = 1\n}\n", "z = 2"},
		},
		{
			name:   "loop body not severed",
			source: "for (i = 0; i < 3; i++) {\n  total = total + i\n}\ntotal",
			want:   []string{"for (i = 0; i < 3; i++) {\n  total = total + i\n}\n", "total"},
		},
		{
			name:   "leading comment attaches to first block",
			source: "// seed\n\nx = 1\ny = 2",
			want:   []string{"// seed\n\nx = 1\n", "y = 2"},
		},
		{
			name:   "trailing newline stays with last block",
			source: "x = 1\n",
			want:   []string{"x = 1\n"},
		},
		{
			name:   "unparseable source is one block",
			source: "var (",
			want:   []string{"var ("},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.source)
			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, got[i].Source, "block %d", i)
				assert.Equal(t, i == len(got)-1, got[i].Final, "block %d final flag", i)
			}
		})
	}
}

func TestSplit_Roundtrip(t *testing.T) {
	sources := []string{
		"x = 1",
		"x = 5\nx + 1",
		"// header\nvar a = 1;\nvar b = 2;  // note\na + b",
		"if (a) {\n  b = 1\n} else {\n  b = 2\n}\nwhile (b > 0) { b-- }\nb",
		"x = 1;; y = 2\n\n\nz = 3",
		"not valid js {{{",
	}

	for _, source := range sources {
		var joined strings.Builder
		for _, b := range Split(source) {
			joined.WriteString(b.Source)
		}
		assert.Equal(t, source, joined.String(), "concatenation must reproduce input")
	}
}

func TestIsExpression(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{name: "arithmetic", source: "x + 1", want: true},
		{name: "bare identifier", source: "total", want: true},
		{name: "call", source: "skill.run()", want: true},
		{name: "postfix update", source: "x++", want: true},
		{name: "assignment reads as statement", source: "x = 2", want: false},
		{name: "compound assignment", source: "x += 2", want: false},
		{name: "variable declaration", source: "var z = 3", want: false},
		{name: "control flow", source: "if (x) { y = 1 }", want: false},
		{name: "two statements", source: "x + 1\ny + 2", want: false},
		{name: "empty", source: "", want: false},
		{name: "unparseable", source: "var (", want: false},
		{name: "expression with trailing comment", source: "x + 1 // sum", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpression(tt.source))
		})
	}
}
