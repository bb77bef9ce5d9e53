package contract

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Canonical produces the canonical textual encoding of a clause.
//
// This is the ONLY representation the contract encoders may build hidden
// parameter/argument types from: two clauses are the same precondition iff
// their canonical encodings are byte-identical. Free-form text (custom
// clauses, boolean expressions) is NFC normalized at this boundary so that
// visually identical annotations cannot encode to different contracts.
func Canonical(p Precondition) string {
	switch p.Kind {
	case KindValidPtr:
		return fmt.Sprintf("valid_ptr(%s,%s)", p.Ident, p.Access)
	case KindProperAlign:
		return fmt.Sprintf("proper_align(%s)", p.Ident)
	case KindBoolean:
		return fmt.Sprintf("boolean(%s)", norm.NFC.String(normalizeExpr(p.Text)))
	default:
		return fmt.Sprintf("custom(%s)", norm.NFC.String(p.Text))
	}
}
