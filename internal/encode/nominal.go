package encode

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/aticu/pre/internal/contract"
)

// nominalEncoder encodes a precondition set as a generated named marker
// type declared beside the function. The type name embeds a hash of the
// canonical set, so a call site asserting a different set references a type
// name that does not exist and fails to compile.
//
// Compared to the structural strategy this produces shorter compiler errors
// at the cost of polluting the declaring package's identifier namespace.
type nominalEncoder struct{}

func (nominalEncoder) Strategy() Strategy { return Nominal }

// MarkerTypeName is the generated marker type name for a declaration with
// the given (unsorted) precondition set.
func MarkerTypeName(fnName string, ps []contract.Precondition) string {
	return markerTypeName(fnName, sortedCopy(ps))
}

func markerTypeName(fnName string, sorted []contract.Precondition) string {
	return fmt.Sprintf("%sPre_%s", fnName, setHash(sorted))
}

func (nominalEncoder) ForDeclaration(fnName string, ps []contract.Precondition) DeclEncoding {
	sorted := sortedCopy(ps)
	name := markerTypeName(fnName, sorted)

	return DeclEncoding{
		Param: &ast.Field{
			Names: []*ast.Ident{ast.NewIdent("_")},
			Type:  ast.NewIdent(name),
		},
		Companion: &ast.GenDecl{
			Tok: token.TYPE,
			Specs: []ast.Spec{&ast.TypeSpec{
				Name: ast.NewIdent(name),
				Type: markerStruct(sorted),
			}},
		},
	}
}

func (nominalEncoder) ForCall(calleePath []string, as []contract.Assurance) CallEncoding {
	sorted := sortedClauses(as)
	fnName := calleePath[len(calleePath)-1]
	name := markerTypeName(fnName, sorted)

	// The marker type lives next to the callee, so it is addressed through
	// the same qualifier as the callee itself.
	var typ ast.Expr = ast.NewIdent(name)
	if len(calleePath) > 1 {
		typ = &ast.SelectorExpr{
			X:   pathExpr(calleePath[:len(calleePath)-1]),
			Sel: ast.NewIdent(name),
		}
	}

	return CallEncoding{Arg: &ast.CompositeLit{Type: typ}}
}

// pathExpr builds the selector chain for a path's segments.
func pathExpr(segments []string) ast.Expr {
	var expr ast.Expr = ast.NewIdent(segments[0])
	for _, seg := range segments[1:] {
		expr = &ast.SelectorExpr{X: expr, Sel: ast.NewIdent(seg)}
	}
	return expr
}
