// Package encode turns canonical precondition sets into the hidden
// parameter/argument pair that makes the Go compiler enforce contract
// equality.
//
// Two strategies exist behind one interface. The structural strategy builds
// anonymous struct types whose identity in Go is exactly field-wise
// structural equality, so equal precondition sets unify and unequal ones
// cannot. The nominal strategy, kept for toolchains where the anonymous
// types hurt error readability, synthesizes a named marker type per
// declaration whose name covers a hash of the set. A strategy is selected
// once per run and never mixed within one pass.
package encode

import (
	"fmt"
	"go/ast"

	"github.com/aticu/pre/internal/contract"
)

// Strategy selects a contract encoding.
type Strategy string

const (
	// Structural encodes sets as anonymous struct types.
	Structural Strategy = "structural"
	// Nominal encodes sets as generated named marker types.
	Nominal Strategy = "nominal"
)

// DeclEncoding is the declaration side of an encoded contract.
type DeclEncoding struct {
	// Param is the hidden parameter appended to the signature.
	Param *ast.Field
	// Companion is a supporting declaration emitted beside the function,
	// or nil. Only the nominal strategy needs one.
	Companion ast.Decl
}

// CallEncoding is the call side of an encoded contract.
type CallEncoding struct {
	// Arg is the hidden argument appended to the call.
	Arg ast.Expr
}

// Encoder produces type-compatible encodings iff the declaration's
// precondition set and the call's assurance set are equal under canonical
// ordering. The encoder itself never diagnoses a mismatch; the host
// compiler's ordinary type and arity checking does.
type Encoder interface {
	// ForDeclaration encodes the contract of the named declaration.
	ForDeclaration(fnName string, ps []contract.Precondition) DeclEncoding
	// ForCall encodes the assured contract for a call to calleePath.
	ForCall(calleePath []string, as []contract.Assurance) CallEncoding
	// Strategy identifies the encoding in tool output.
	Strategy() Strategy
}

// New returns the encoder for the given strategy.
func New(s Strategy) (Encoder, error) {
	switch s {
	case Structural, "":
		return structuralEncoder{}, nil
	case Nominal:
		return nominalEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown encoder strategy %q: must be %q or %q", s, Structural, Nominal)
	}
}

// sortedClauses extracts the clause list of an assurance set in canonical
// order.
func sortedClauses(as []contract.Assurance) []contract.Precondition {
	ps := make([]contract.Precondition, len(as))
	for i, a := range as {
		ps[i] = a.Precondition
	}
	contract.SortCanonical(ps)
	return ps
}

// sortedCopy returns the clause list sorted canonically without mutating
// the caller's declaration-order slice.
func sortedCopy(ps []contract.Precondition) []contract.Precondition {
	out := append([]contract.Precondition(nil), ps...)
	contract.SortCanonical(out)
	return out
}
