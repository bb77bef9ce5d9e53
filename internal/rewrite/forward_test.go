package rewrite

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aticu/pre/internal/diag"
	"github.com/aticu/pre/internal/directive"
)

func parseCall(t *testing.T, src string) *ast.CallExpr {
	t.Helper()
	expr, err := parser.ParseExpr(src)
	require.NoError(t, err)
	call, ok := expr.(*ast.CallExpr)
	require.True(t, ok, "%s is not a call", src)
	return call
}

func TestResolveCallee(t *testing.T) {
	pkgs := map[string]bool{"mod_a": true, "strings": true}

	tests := []struct {
		name     string
		src      string
		segments []string
		method   bool
		generic  bool
	}{
		{name: "bare function", src: "foo(1)", segments: []string{"foo"}},
		{name: "package function", src: "mod_a.X(1)", segments: []string{"mod_a", "X"}},
		{name: "nested package path", src: "mod_a.sub.X(1)", segments: []string{"mod_a", "sub", "X"}},
		{name: "method call", src: "v.Method()", segments: []string{"v", "Method"}, method: true},
		{name: "generic function", src: "foo[int](1)", segments: []string{"foo"}, generic: true},
		{name: "generic package function", src: "mod_a.X[int, string](1)", segments: []string{"mod_a", "X"}, generic: true},
		{name: "returned function", src: "factory()(1)"},
		{name: "indexed function value", src: "fns[0](1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := resolveCallee(parseCall(t, tt.src), pkgs)
			assert.Equal(t, tt.segments, c.segments)
			assert.Equal(t, tt.method, c.method)
			assert.Equal(t, tt.generic, c.generic != nil)
		})
	}
}

func TestReplacePrefix(t *testing.T) {
	var pos token.Position

	t.Run("whole path", func(t *testing.T) {
		sink := diag.NewSink()
		got := replacePrefix([]string{"mod_a"}, []string{"mod_b"}, []string{"mod_a", "X"}, pos, sink)
		assert.Equal(t, []string{"mod_b", "X"}, got)
		assert.False(t, sink.HasErrors())
	})

	t.Run("deep prefix", func(t *testing.T) {
		sink := diag.NewSink()
		got := replacePrefix(
			[]string{"mod_a", "sub"}, []string{"mirror"},
			[]string{"mod_a", "sub", "X"}, pos, sink)
		assert.Equal(t, []string{"mirror", "X"}, got)
	})

	t.Run("mismatched segment", func(t *testing.T) {
		sink := diag.NewSink()
		got := replacePrefix([]string{"mod_c"}, []string{"mod_b"}, []string{"mod_a", "X"}, pos, sink)
		assert.Nil(t, got)
		diags := sink.Flush()
		require.Len(t, diags, 1)
		assert.Equal(t, "cannot replace mod_c in this path: mod_c != mod_a", diags[0].Message)
		assert.Equal(t, "try specifying a prefix of mod_a.X", diags[0].Help)
	})

	t.Run("prefix longer than path", func(t *testing.T) {
		sink := diag.NewSink()
		got := replacePrefix(
			[]string{"mod_a", "X", "deep"}, []string{"mod_b"},
			[]string{"mod_a", "X"}, pos, sink)
		assert.Nil(t, got)
		diags := sink.Flush()
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "longer than the path itself")
	})
}

func TestResolveForward(t *testing.T) {
	pkgs := map[string]bool{"mod_a": true, "pre_std": true}
	fset := token.NewFileSet()

	resolve := func(t *testing.T, fwd *directive.Forward, callSrc string) (*forwardTarget, *diag.Sink) {
		t.Helper()
		sink := diag.NewSink()
		c := resolveCallee(parseCall(t, callSrc), pkgs)
		return resolveForward(fwd, c, fset, token.NoPos, sink), sink
	}

	t.Run("direct prepends path", func(t *testing.T) {
		fwd := &directive.Forward{Kind: directive.ForwardDirect, Path: []string{"pre_std"}}
		target, sink := resolve(t, fwd, "mod_a.X(1)")
		require.NotNil(t, target, diagMessages(sink.Flush()))
		assert.Equal(t, []string{"pre_std", "mod_a", "X"}, target.rewrite)
		assert.Nil(t, target.stub)
	})

	t.Run("replace splices prefix", func(t *testing.T) {
		fwd := &directive.Forward{
			Kind: directive.ForwardReplace,
			From: []string{"mod_a"},
			To:   []string{"pre_std", "mod_a"},
		}
		target, sink := resolve(t, fwd, "mod_a.X(1)")
		require.NotNil(t, target, diagMessages(sink.Flush()))
		assert.Equal(t, []string{"pre_std", "mod_a", "X"}, target.rewrite)
	})

	t.Run("replace rejects method call", func(t *testing.T) {
		fwd := &directive.Forward{
			Kind: directive.ForwardReplace,
			From: []string{"mod_a"},
			To:   []string{"mod_b"},
		}
		target, sink := resolve(t, fwd, "v.Method()")
		assert.Nil(t, target)
		diags := sink.Flush()
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "not supported for method calls")
		assert.Contains(t, diags[0].Help, "mod_b")
	})

	t.Run("impl addresses the stub", func(t *testing.T) {
		fwd := &directive.Forward{
			Kind: directive.ForwardImpl,
			Path: []string{"pre_std", "SomeType"},
		}
		target, sink := resolve(t, fwd, "v.Method()")
		require.NotNil(t, target, diagMessages(sink.Flush()))
		assert.Nil(t, target.rewrite)
		assert.Equal(t, []string{"pre_std", "SomeType__impl__Method__"}, target.stub)
	})

	t.Run("direct on method acts like impl", func(t *testing.T) {
		fwd := &directive.Forward{Kind: directive.ForwardDirect, Path: []string{"pre_std", "SomeType"}}
		target, sink := resolve(t, fwd, "v.Method()")
		require.NotNil(t, target, diagMessages(sink.Flush()))
		assert.Nil(t, target.rewrite)
		assert.Equal(t, []string{"pre_std", "SomeType__impl__Method__"}, target.stub)
	})

	t.Run("unresolvable callee", func(t *testing.T) {
		fwd := &directive.Forward{Kind: directive.ForwardDirect, Path: []string{"pre_std"}}
		target, sink := resolve(t, fwd, "factory()(1)")
		assert.Nil(t, target)
		diags := sink.Flush()
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "unable to determine at compile time")
	})
}
