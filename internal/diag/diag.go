// Package diag collects diagnostics for one rewrite pass.
//
// A pass accumulates every problem it finds instead of stopping at the
// first, then flushes them to the caller atomically at pass end. Hard errors
// do not abort the pass: the rewriters fall back to emitting the original,
// unrewritten text for the offending node so downstream tooling still has
// useful output to present.
package diag

import (
	"fmt"
	"go/token"

	"github.com/google/uuid"
)

// Severity grades a diagnostic.
type Severity int

const (
	// Warning is surfaced but never fails the pass.
	Warning Severity = iota
	// Error fails the pass after best-effort output is produced.
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem with its source position and an
// optional corrective suggestion.
type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Pos      token.Position `json:"pos"`
	Message  string         `json:"message"`
	Help     string         `json:"help,omitempty"`
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
	if d.Help != "" {
		s += fmt.Sprintf("\n\thelp: %s", d.Help)
	}
	return s
}

// Sink accumulates diagnostics for the duration of one pass.
// It is not safe for concurrent use; the engine is single-threaded.
type Sink struct {
	// PassID identifies this pass in logs and in the contract index.
	PassID uuid.UUID

	diags  []Diagnostic
	errors int
}

// NewSink creates an empty sink with a fresh pass ID.
func NewSink() *Sink {
	return &Sink{PassID: uuid.New()}
}

// Errorf records a hard error at pos.
func (s *Sink) Errorf(pos token.Position, format string, args ...any) {
	s.report(Diagnostic{Severity: Error, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// ErrorWithHelp records a hard error carrying a corrective suggestion.
func (s *Sink) ErrorWithHelp(pos token.Position, help string, format string, args ...any) {
	s.report(Diagnostic{Severity: Error, Pos: pos, Message: fmt.Sprintf(format, args...), Help: help})
}

// Warnf records a soft warning at pos.
func (s *Sink) Warnf(pos token.Position, format string, args ...any) {
	s.report(Diagnostic{Severity: Warning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// WarnWithHelp records a soft warning carrying a suggestion.
func (s *Sink) WarnWithHelp(pos token.Position, help string, format string, args ...any) {
	s.report(Diagnostic{Severity: Warning, Pos: pos, Message: fmt.Sprintf(format, args...), Help: help})
}

func (s *Sink) report(d Diagnostic) {
	if d.Severity == Error {
		s.errors++
	}
	s.diags = append(s.diags, d)
}

// HasErrors reports whether any hard error was recorded.
func (s *Sink) HasErrors() bool {
	return s.errors > 0
}

// Len returns the number of recorded diagnostics.
func (s *Sink) Len() int {
	return len(s.diags)
}

// Flush drains all recorded diagnostics in report order.
// After Flush the sink is empty and reusable.
func (s *Sink) Flush() []Diagnostic {
	out := s.diags
	s.diags = nil
	s.errors = 0
	return out
}
