package rewrite

import (
	"go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractFromSource(t *testing.T, expr string) bool {
	t.Helper()
	parsed, err := parser.ParseExpr(expr)
	require.NoError(t, err)
	return extractCall(parsed) != nil
}

func TestExtractCallDescent(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{name: "direct call", expr: "f(x)", want: true},
		{name: "method call", expr: "v.m(x)", want: true},
		{name: "parenthesized", expr: "(f(x))", want: true},
		{name: "reference", expr: "&f(x)", want: true},
		{name: "negation", expr: "!f(x)", want: true},
		{name: "deref", expr: "*f(x)", want: true},
		{name: "type assertion", expr: "f(x).(int)", want: true},
		{name: "slice base", expr: "f(x)[1:2]", want: true},
		{name: "binary one side", expr: "f(x) + 1", want: true},
		{name: "binary other side", expr: "1 + f(x)", want: true},
		{name: "index one side", expr: "xs[f(x)]", want: true},
		{name: "deeply nested", expr: "!(&(f(x)))", want: true},

		{name: "no call", expr: "x + 1", want: false},
		{name: "binary both sides", expr: "f(x) + g(y)", want: false},
		{name: "composite literal", expr: "T{f(x)}", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFromSource(t, tt.expr))
		})
	}
}

func TestExtractFromStmtShapes(t *testing.T) {
	// Statements are parsed by wrapping in a function body.
	sources := map[string]struct {
		stmt string
		want bool
	}{
		"expression statement": {stmt: "f(x)", want: true},
		"assignment":           {stmt: "y = f(x)", want: true},
		"define":               {stmt: "y := f(x)", want: true},
		"return":               {stmt: "return f(x)", want: true},
		"defer":                {stmt: "defer f(x)", want: true},
		"go":                   {stmt: "go f(x)", want: true},
		"send":                 {stmt: "ch <- f(x)", want: true},
		"multi assign":         {stmt: "a, b = f(x), g(y)", want: false},
		"no call":              {stmt: "y = x", want: false},
	}

	for name, tt := range sources {
		t.Run(name, func(t *testing.T) {
			body := parseBody(t, tt.stmt)
			require.Len(t, body, 1)
			got := extractFromStmt(body[0]) != nil
			assert.Equal(t, tt.want, got)
		})
	}
}
