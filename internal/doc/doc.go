// Package doc renders human-readable contract documentation. The mirror
// generator attaches it to generated wrappers and the doc command prints it
// for rewritten declarations.
package doc

import (
	"fmt"
	"strings"

	"github.com/aticu/pre/internal/contract"
)

// Describe returns the documentation sentence for one clause.
func Describe(p contract.Precondition) string {
	switch p.Kind {
	case contract.KindValidPtr:
		return fmt.Sprintf("the pointer %s must be valid for %s", p.Ident, accessPhrase(p.Access))
	case contract.KindProperAlign:
		return fmt.Sprintf("the pointer %s must be properly aligned", p.Ident)
	case contract.KindBoolean:
		return fmt.Sprintf("%s must hold", p.Text)
	default:
		return p.Text
	}
}

func accessPhrase(m contract.AccessMode) string {
	switch m {
	case contract.Read:
		return "reads"
	case contract.Write:
		return "writes"
	default:
		return "reads and writes"
	}
}

// Lines returns one bullet line per clause, in canonical order with
// canonically-equal duplicates removed.
func Lines(ps []contract.Precondition) []string {
	ordered := contract.DedupCanonical(ps)
	out := make([]string, 0, len(ordered))
	for _, p := range ordered {
		out = append(out, "  - "+Describe(p))
	}
	return out
}

// Section renders the contract list as a plain text block headed by
// "Preconditions:". Empty clause lists render as the empty string.
func Section(ps []contract.Precondition) string {
	lines := Lines(ps)
	if len(lines) == 0 {
		return ""
	}
	return "Preconditions:\n" + strings.Join(lines, "\n") + "\n"
}

// Comment renders the contract list as Go comment lines, for attaching to
// generated declarations.
func Comment(ps []contract.Precondition) string {
	section := Section(ps)
	if section == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(section, "\n"), "\n") {
		b.WriteString("// ")
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}

// Entry renders the full doc listing for one declaration: the qualified
// name followed by its contract section.
func Entry(name string, ps []contract.Precondition) string {
	section := Section(ps)
	if section == "" {
		return name + ": no preconditions\n"
	}
	return name + "\n" + section
}
