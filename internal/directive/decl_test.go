package directive

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/diag"
)

func parseFuncDecl(t *testing.T, src string) (*ast.FuncDecl, *token.FileSet) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", "package p\n\n"+src, parser.ParseComments)
	require.NoError(t, err)
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			return fn, fset
		}
	}
	t.Fatal("no function declaration in source")
	return nil, nil
}

func TestParseDeclAccumulates(t *testing.T) {
	fn, fset := parseFuncDecl(t, `
//pre: "is bar"
//pre: valid_ptr(src, r)
//pre: len(xs) >= 2
//pre: no_doc
//pre: no_debug_assert
func Foo(src *int, xs []int) {}`)

	sink := diag.NewSink()
	got := ParseDecl(fn, fset, sink)

	assert.True(t, got.Present)
	assert.True(t, got.NoDoc)
	assert.True(t, got.NoDebugAssert)
	assert.False(t, sink.HasErrors())
	require.Len(t, got.Preconditions, 3)
	// Declaration order, not canonical order.
	assert.Equal(t, contract.KindCustom, got.Preconditions[0].Kind)
	assert.Equal(t, contract.KindValidPtr, got.Preconditions[1].Kind)
	assert.Equal(t, contract.KindBoolean, got.Preconditions[2].Kind)
}

func TestParseDeclBareSentinel(t *testing.T) {
	fn, fset := parseFuncDecl(t, `
//pre:
func Foo() {}`)

	sink := diag.NewSink()
	got := ParseDecl(fn, fset, sink)

	assert.True(t, got.Present)
	assert.Empty(t, got.Preconditions)
}

func TestParseDeclWhenPredicate(t *testing.T) {
	fn, fset := parseFuncDecl(t, `
//pre: when(debug) "is bar"
func Foo() {}`)

	sink := diag.NewSink()
	got := ParseDecl(fn, fset, sink)

	require.Len(t, got.Preconditions, 1)
	assert.Equal(t, "debug", got.Preconditions[0].When)
	assert.Equal(t, "is bar", got.Preconditions[0].Text)
}

func TestParseDeclContinuesPastErrors(t *testing.T) {
	fn, fset := parseFuncDecl(t, `
//pre: valid_ptr(
//pre: "still parsed"
func Foo() {}`)

	sink := diag.NewSink()
	got := ParseDecl(fn, fset, sink)

	assert.True(t, sink.HasErrors())
	require.Len(t, got.Preconditions, 1)
	assert.Equal(t, "still parsed", got.Preconditions[0].Text)
}

func TestParseDeclNoDirectives(t *testing.T) {
	fn, fset := parseFuncDecl(t, `
// Foo does something.
func Foo() {}`)

	sink := diag.NewSink()
	got := ParseDecl(fn, fset, sink)

	assert.False(t, got.Present)
	assert.Zero(t, sink.Len())
}
