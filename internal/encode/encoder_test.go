package encode

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aticu/pre/internal/contract"
)

func mustParse(t *testing.T, input string) contract.Precondition {
	t.Helper()
	p, err := contract.Parse(input)
	require.NoError(t, err)
	return p
}

func render(t *testing.T, node any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, printer.Fprint(&buf, token.NewFileSet(), node))
	return buf.String()
}

func assured(ps ...contract.Precondition) []contract.Assurance {
	as := make([]contract.Assurance, len(ps))
	for i, p := range ps {
		as[i] = contract.Assurance{Precondition: p, Reason: "test reason"}
	}
	return as
}

func permutations(ps []contract.Precondition) [][]contract.Precondition {
	if len(ps) <= 1 {
		return [][]contract.Precondition{ps}
	}
	var out [][]contract.Precondition
	for i := range ps {
		rest := make([]contract.Precondition, 0, len(ps)-1)
		rest = append(rest, ps[:i]...)
		rest = append(rest, ps[i+1:]...)
		for _, perm := range permutations(rest) {
			out = append(out, append([]contract.Precondition{ps[i]}, perm...))
		}
	}
	return out
}

func testSet(t *testing.T) []contract.Precondition {
	return []contract.Precondition{
		mustParse(t, `"is bar"`),
		mustParse(t, "valid_ptr(src, r)"),
		mustParse(t, "len(xs) >= 2"),
	}
}

func TestEncoderSelection(t *testing.T) {
	enc, err := New(Structural)
	require.NoError(t, err)
	assert.Equal(t, Structural, enc.Strategy())

	enc, err = New(Nominal)
	require.NoError(t, err)
	assert.Equal(t, Nominal, enc.Strategy())

	// The structural strategy is the default.
	enc, err = New("")
	require.NoError(t, err)
	assert.Equal(t, Structural, enc.Strategy())

	_, err = New("bogus")
	assert.Error(t, err)
}

func TestOrderInvariance(t *testing.T) {
	for _, strategy := range []Strategy{Structural, Nominal} {
		t.Run(string(strategy), func(t *testing.T) {
			enc, err := New(strategy)
			require.NoError(t, err)

			base := testSet(t)
			wantParam := render(t, enc.ForDeclaration("Foo", base).Param.Type)
			wantArg := render(t, enc.ForCall([]string{"Foo"}, assured(base...)).Arg)

			for _, perm := range permutations(base) {
				assert.Equal(t, wantParam, render(t, enc.ForDeclaration("Foo", perm).Param.Type))
				assert.Equal(t, wantArg, render(t, enc.ForCall([]string{"Foo"}, assured(perm...)).Arg))
			}
		})
	}
}

func TestStructuralMatchIsTypeEquality(t *testing.T) {
	enc, err := New(Structural)
	require.NoError(t, err)

	base := testSet(t)
	declType := render(t, enc.ForDeclaration("Foo", base).Param.Type)

	// Exact match: the call's composite literal names the identical type.
	arg := enc.ForCall([]string{"Foo"}, assured(base...)).Arg
	lit, ok := arg.(*ast.CompositeLit)
	require.True(t, ok)
	assert.Equal(t, declType, render(t, lit.Type))

	// Subset, superset and a differing clause all render different types.
	subset := base[:2]
	assert.NotEqual(t, declType, render(t, enc.ForCall([]string{"Foo"}, assured(subset...)).Arg.(*ast.CompositeLit).Type))

	superset := append(append([]contract.Precondition{}, base...), mustParse(t, `"extra"`))
	assert.NotEqual(t, declType, render(t, enc.ForCall([]string{"Foo"}, assured(superset...)).Arg.(*ast.CompositeLit).Type))

	differing := append(append([]contract.Precondition{}, base[:2]...), mustParse(t, `"is baz"`))
	assert.NotEqual(t, declType, render(t, enc.ForCall([]string{"Foo"}, assured(differing...)).Arg.(*ast.CompositeLit).Type))
}

func TestStructuralNoPreconditions(t *testing.T) {
	enc, err := New(Structural)
	require.NoError(t, err)

	decl := enc.ForDeclaration("Foo", nil)
	assert.Nil(t, decl.Companion)

	// An empty set still encodes: declaring zero preconditions and assuring
	// zero preconditions must stay type-compatible.
	arg := enc.ForCall([]string{"Foo"}, nil).Arg
	assert.Equal(t, render(t, decl.Param.Type), render(t, arg.(*ast.CompositeLit).Type))
}

func TestNominalNameCoversSet(t *testing.T) {
	base := testSet(t)

	name := MarkerTypeName("Foo", base)
	assert.Contains(t, name, "FooPre_")

	// Same set, any order: same name.
	for _, perm := range permutations(base) {
		assert.Equal(t, name, MarkerTypeName("Foo", perm))
	}

	// Different set: different name.
	assert.NotEqual(t, name, MarkerTypeName("Foo", base[:2]))
	// Different function: different name.
	assert.NotEqual(t, name, MarkerTypeName("Bar", base))
}

func TestNominalCompanionAndQualification(t *testing.T) {
	enc, err := New(Nominal)
	require.NoError(t, err)

	base := testSet(t)
	decl := enc.ForDeclaration("Foo", base)
	require.NotNil(t, decl.Companion)
	assert.Contains(t, render(t, decl.Companion), "type FooPre_")
	assert.Equal(t, MarkerTypeName("Foo", base), render(t, decl.Param.Type))

	// A cross-package call qualifies the marker type with the callee's path.
	arg := enc.ForCall([]string{"pkg", "Foo"}, assured(base...)).Arg
	assert.Equal(t, "pkg."+MarkerTypeName("Foo", base)+"{}", render(t, arg))
}
