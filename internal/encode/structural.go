package encode

import (
	"go/ast"

	"github.com/aticu/pre/internal/contract"
)

// structuralEncoder encodes a precondition set as an anonymous struct type
// with one empty marker field per clause, in canonical order.
//
// Go's type identity for anonymous structs is field-wise: same names, same
// types, same order. Because both sides sort canonically first, two
// encodings unify exactly when the underlying sets are equal, and the
// absence of the hidden argument is an ordinary arity error.
type structuralEncoder struct{}

func (structuralEncoder) Strategy() Strategy { return Structural }

func (structuralEncoder) ForDeclaration(fnName string, ps []contract.Precondition) DeclEncoding {
	return DeclEncoding{
		Param: &ast.Field{
			Names: []*ast.Ident{ast.NewIdent("_")},
			Type:  markerStruct(sortedCopy(ps)),
		},
	}
}

func (structuralEncoder) ForCall(calleePath []string, as []contract.Assurance) CallEncoding {
	return CallEncoding{
		Arg: &ast.CompositeLit{Type: markerStruct(sortedClauses(as))},
	}
}

// markerStruct builds the aggregate marker type for a sorted clause list.
func markerStruct(sorted []contract.Precondition) *ast.StructType {
	fields := &ast.FieldList{}
	for _, p := range sorted {
		fields.List = append(fields.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(fieldName(p))},
			Type:  emptyStruct(),
		})
	}
	if len(fields.List) == 0 {
		return emptyStruct()
	}
	return &ast.StructType{Fields: fields}
}

// emptyStruct returns a marker type that prints as struct{}. The fabricated
// brace positions keep the printer from splitting it across lines.
func emptyStruct() *ast.StructType {
	return &ast.StructType{Fields: &ast.FieldList{Opening: 1, Closing: 1}}
}
