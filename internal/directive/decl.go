package directive

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/diag"
)

// PrePrefix marks a declaration directive.
const PrePrefix = "//pre:"

// DeclAnnotations is the parsed contract surface of one declaration.
type DeclAnnotations struct {
	// Present is true if any //pre: directive was seen, including the bare
	// sentinel form that only enables assurance processing in the body.
	Present bool
	// Preconditions in declaration order, not yet sorted.
	Preconditions []contract.CfgPrecondition
	// NoDoc suppresses generated contract documentation.
	NoDoc bool
	// NoDebugAssert suppresses inlined runtime checks for boolean clauses.
	NoDebugAssert bool
	// Span is the position of the first directive, for diagnostics.
	Span token.Position
}

// ParseDecl extracts the contract annotations from a declaration's doc
// comment. Malformed directives are reported to the sink and skipped;
// well-formed siblings still accumulate.
func ParseDecl(decl *ast.FuncDecl, fset *token.FileSet, sink *diag.Sink) DeclAnnotations {
	var out DeclAnnotations
	if decl.Doc == nil {
		return out
	}

	for _, c := range decl.Doc.List {
		payload, ok := cutDirective(c.Text, PrePrefix)
		if !ok {
			continue
		}
		pos := fset.Position(c.Pos())
		if !out.Present {
			out.Span = pos
			out.Present = true
		}

		switch {
		case payload == "":
			// Bare sentinel: enables processing, contributes no clause.
		case payload == "no_doc":
			out.NoDoc = true
		case payload == "no_debug_assert":
			out.NoDebugAssert = true
		default:
			clause, err := ParseCfgClause(payload)
			if err != nil {
				sink.Errorf(pos, "%v", err)
				continue
			}
			out.Preconditions = append(out.Preconditions, clause)
		}
	}

	return out
}

// ParseCfgClause parses `[when(tag)] <clause>`. It is shared with the
// mirror generator, whose skeletons carry clause payloads outside comments.
func ParseCfgClause(payload string) (contract.CfgPrecondition, error) {
	var when string
	if rest, ok := strings.CutPrefix(payload, "when("); ok {
		idx := strings.IndexByte(rest, ')')
		if idx < 0 {
			return contract.CfgPrecondition{}, &contract.ParseError{Input: payload, Message: "unclosed when(...) predicate"}
		}
		when = strings.TrimSpace(rest[:idx])
		payload = strings.TrimSpace(rest[idx+1:])
	}

	p, err := contract.Parse(payload)
	if err != nil {
		return contract.CfgPrecondition{}, err
	}
	return contract.CfgPrecondition{Precondition: p, When: when}, nil
}

// cutDirective strips a directive prefix and trims the payload.
// `//pre: x`, `//pre:x` and `//pre:` are all accepted.
func cutDirective(comment, prefix string) (string, bool) {
	if !strings.HasPrefix(comment, prefix) {
		return "", false
	}
	return strings.TrimSpace(comment[len(prefix):]), true
}
