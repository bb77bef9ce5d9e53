package contract

import "fmt"

// Display renders a clause the way an author would write it in an
// annotation. Parsing the result yields a clause that compares equal to the
// original under the canonical order.
func Display(p Precondition) string {
	switch p.Kind {
	case KindValidPtr:
		return fmt.Sprintf("valid_ptr(%s, %s)", p.Ident, p.Access)
	case KindProperAlign:
		return fmt.Sprintf("proper_align(%s)", p.Ident)
	case KindBoolean:
		return p.Text
	default:
		return fmt.Sprintf("%q", p.Text)
	}
}
