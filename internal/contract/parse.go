package contract

import (
	"fmt"
	"go/parser"
	"strconv"
	"strings"
	"unicode"
)

// ParseError describes a clause that could not be parsed.
type ParseError struct {
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid precondition %q: %s", e.Input, e.Message)
}

// Parse parses the textual form of a single precondition clause.
//
// Recognized forms, tried in order:
//
//	valid_ptr(ident, r|w|r+w)
//	proper_align(ident)
//	"arbitrary descriptive text"
//	<Go boolean expression>
//
// A bare string literal is always a custom clause; expression parsing is
// attempted last, so on failure the error reports both causes.
func Parse(input string) (Precondition, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Precondition{}, &ParseError{Input: input, Message: "empty clause"}
	}

	if rest, ok := keywordArgs(s, "valid_ptr"); ok {
		return parseValidPtr(input, rest)
	}
	if rest, ok := keywordArgs(s, "proper_align"); ok {
		return parseProperAlign(input, rest)
	}

	if s[0] == '"' || s[0] == '`' {
		text, err := strconv.Unquote(s)
		if err != nil {
			return Precondition{}, &ParseError{Input: input, Message: fmt.Sprintf("malformed string literal: %v", err)}
		}
		return Precondition{Kind: KindCustom, Text: text}, nil
	}

	// Anything else must be a boolean expression.
	if _, err := parser.ParseExpr(s); err != nil {
		return Precondition{}, &ParseError{
			Input:   input,
			Message: fmt.Sprintf("neither a string literal (must start with a quote) nor a valid expression (%v)", err),
		}
	}
	return Precondition{Kind: KindBoolean, Text: normalizeExpr(s)}, nil
}

// keywordArgs matches `kw ( ... )` covering the whole input and returns the
// parenthesized argument text.
func keywordArgs(s, kw string) (string, bool) {
	if !strings.HasPrefix(s, kw) {
		return "", false
	}
	rest := strings.TrimSpace(s[len(kw):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

func parseValidPtr(input, args string) (Precondition, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 2 {
		return Precondition{}, &ParseError{Input: input, Message: "valid_ptr takes exactly two arguments: valid_ptr(ident, r|w|r+w)"}
	}
	ident := strings.TrimSpace(parts[0])
	if !isIdent(ident) {
		return Precondition{}, &ParseError{Input: input, Message: fmt.Sprintf("%q is not a valid argument name", ident)}
	}
	var access AccessMode
	switch strings.ReplaceAll(strings.TrimSpace(parts[1]), " ", "") {
	case "r":
		access = Read
	case "w":
		access = Write
	case "r+w", "w+r":
		access = ReadWrite
	default:
		return Precondition{}, &ParseError{Input: input, Message: fmt.Sprintf("access mode must be r, w or r+w, got %q", strings.TrimSpace(parts[1]))}
	}
	return Precondition{Kind: KindValidPtr, Ident: ident, Access: access}, nil
}

func parseProperAlign(input, args string) (Precondition, error) {
	ident := strings.TrimSpace(args)
	if !isIdent(ident) {
		return Precondition{}, &ParseError{Input: input, Message: fmt.Sprintf("%q is not a valid argument name", ident)}
	}
	return Precondition{Kind: KindProperAlign, Ident: ident}, nil
}

// isIdent reports whether s has the shape of a Go identifier. Keywords are
// accepted on purpose: an argument named like a reserved word still names a
// pointer argument here.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// normalizeExpr collapses insignificant whitespace so that equality and
// ordering over boolean clauses do not depend on source formatting.
func normalizeExpr(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
