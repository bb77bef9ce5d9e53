package directive

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/diag"
)

// Directive prefixes recognized on call statements.
const (
	AssurePrefix  = "//assure:"
	ForwardPrefix = "//forward:"
	DefPrefix     = "//def:"
)

// HintReason is the placeholder justification suggested in diagnostics.
// Call sites that still carry it (or "todo"/"?") get a warning, not an
// error, to support staged migration of legacy call sites.
const HintReason = "why does this hold?"

// CallAnnotations is the parsed annotation surface of one call site.
type CallAnnotations struct {
	// Present is true if any call directive was seen.
	Present bool
	// Forward redirects where the call's contract is looked up, if set.
	// At most one forward/def directive is permitted per call.
	Forward *Forward
	// Assurances in source order, not yet sorted.
	Assurances []contract.Assurance
	// Span is the position of the first directive, for diagnostics.
	Span token.Position
}

// ParseCallComments extracts call annotations from the comment groups
// attached to the statement containing the call.
func ParseCallComments(groups []*ast.CommentGroup, fset *token.FileSet, sink *diag.Sink) CallAnnotations {
	var out CallAnnotations

	record := func(pos token.Position) {
		if !out.Present {
			out.Span = pos
			out.Present = true
		}
	}

	for _, group := range groups {
		for _, c := range group.List {
			pos := fset.Position(c.Pos())

			if payload, ok := cutDirective(c.Text, AssurePrefix); ok {
				record(pos)
				assurance, ok := parseAssure(payload, pos, sink)
				if ok {
					out.Assurances = append(out.Assurances, assurance)
				}
				continue
			}

			var isDef bool
			payload, ok := cutDirective(c.Text, ForwardPrefix)
			if !ok {
				payload, ok = cutDirective(c.Text, DefPrefix)
				isDef = true
			}
			if !ok {
				continue
			}
			record(pos)
			fwd, err := parseForward(payload, isDef)
			if err != nil {
				sink.Errorf(pos, "%v", err)
				continue
			}
			fwd.Pos = pos
			if out.Forward != nil {
				sink.ErrorWithHelp(pos,
					"there can be just one redirection per call, try removing the wrong one",
					"duplicate forward/def directive")
				continue
			}
			out.Forward = fwd
		}
	}

	return out
}

// parseAssure parses `<clause>, reason = "text"` and validates the reason.
// Missing or empty reasons are hard errors; placeholder reasons only warn.
// The assurance is returned even when the reason is rejected, so rewriting
// can proceed and surface further problems in the same pass.
func parseAssure(payload string, pos token.Position, sink *diag.Sink) (contract.Assurance, bool) {
	clauseText, reason, hasReason := splitReason(payload)

	p, err := contract.Parse(clauseText)
	if err != nil {
		sink.Errorf(pos, "%v", err)
		return contract.Assurance{}, false
	}

	switch {
	case !hasReason:
		sink.ErrorWithHelp(pos,
			"add `, reason = \""+HintReason+"\"`",
			"you need to specify a reason why this precondition holds")
	case reason == "":
		sink.ErrorWithHelp(pos,
			"an empty reason explains nothing, describe why the precondition holds",
			"you need to specify a reason why this precondition holds")
	case isPlaceholderReason(reason):
		sink.WarnWithHelp(pos,
			"specifying a meaningful reason will help you and others understand why this is ok in the future",
			"you should specify a more meaningful reason here")
	}

	return contract.Assurance{Precondition: p, Reason: reason}, true
}

// splitReason separates the trailing `reason = "..."` from the clause text.
// The split happens at the last top-level comma so that commas inside the
// clause (valid_ptr arguments, string text, expression calls) are untouched.
func splitReason(payload string) (clause, reason string, ok bool) {
	idx := lastTopLevelComma(payload)
	if idx < 0 {
		return payload, "", false
	}
	tail := strings.TrimSpace(payload[idx+1:])
	rest, found := strings.CutPrefix(tail, "reason")
	if !found {
		return payload, "", false
	}
	rest = strings.TrimSpace(rest)
	rest, found = strings.CutPrefix(rest, "=")
	if !found {
		return payload, "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"' {
		// Resolve escape sequences so the recorded reason matches what
		// the author wrote, not the literal's source form.
		if unquoted, err := strconv.Unquote(rest); err == nil {
			return strings.TrimSpace(payload[:idx]), unquoted, true
		}
		return strings.TrimSpace(payload[:idx]), rest[1 : len(rest)-1], true
	}
	return strings.TrimSpace(payload[:idx]), "", true
}

func isPlaceholderReason(reason string) bool {
	switch strings.ToLower(reason) {
	case HintReason, "todo", "?":
		return true
	}
	return false
}

// lastTopLevelComma returns the index of the last comma outside parentheses,
// brackets, braces and string literals, or -1.
func lastTopLevelComma(s string) int {
	depth := 0
	inString := false
	escaped := false
	last := -1

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				last = i
			}
		}
	}
	return last
}
