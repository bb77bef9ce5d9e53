// Package harness runs YAML conformance scenarios against the rewrite
// engine. A scenario carries annotated input source and expectations on the
// pass outcome; golden files pin the exact rewritten output.
package harness

import (
	"fmt"
	"strings"

	"github.com/aticu/pre/internal/diag"
	"github.com/aticu/pre/internal/rewrite"
)

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool
	// Output is the pass output (rewritten source, or the input on
	// fallback).
	Output []byte
	// Rewritten mirrors the engine's flag.
	Rewritten bool
	// Diagnostics reported by the pass.
	Diagnostics []diag.Diagnostic
	// Errors lists every failed expectation. Empty when Pass is true.
	Errors []string
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes one scenario in a fresh engine and evaluates its
// expectations.
func Run(scenario *Scenario) (*Result, error) {
	strategy, err := scenario.strategy()
	if err != nil {
		return nil, err
	}

	eng, err := rewrite.New(rewrite.Config{
		Tags:     scenario.tagSet(),
		Strategy: strategy,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	res, err := eng.RewriteFile(scenario.Name+".go", []byte(scenario.Input))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := &Result{
		Pass:        true,
		Output:      res.Output,
		Rewritten:   res.Rewritten,
		Diagnostics: res.Diagnostics,
	}
	evaluate(scenario.Expect, res, result)
	return result, nil
}

// evaluate checks every expectation against the pass result.
func evaluate(expect Expectations, res *rewrite.Result, result *Result) {
	if expect.Rewritten != nil && res.Rewritten != *expect.Rewritten {
		result.AddError("rewritten = %v, expected %v", res.Rewritten, *expect.Rewritten)
	}

	output := string(res.Output)
	for _, want := range expect.Contains {
		if !strings.Contains(output, want) {
			result.AddError("output does not contain %q", want)
		}
	}
	for _, bad := range expect.NotContains {
		if strings.Contains(output, bad) {
			result.AddError("output contains %q", bad)
		}
	}

	if len(expect.Contracts) > 0 {
		recorded := make(map[string]bool, len(res.Contracts))
		for _, c := range res.Contracts {
			recorded[c.Name] = true
		}
		for _, name := range expect.Contracts {
			if !recorded[name] {
				result.AddError("no contract recorded for %s", name)
			}
		}
	}

	if expect.Diagnostics != nil {
		checkDiagnostics(expect.Diagnostics, res.Diagnostics, result)
	}
}

// checkDiagnostics matches reported diagnostics against the expected list,
// in order and exhaustively.
func checkDiagnostics(expected []ExpectedDiagnostic, got []diag.Diagnostic, result *Result) {
	if len(got) != len(expected) {
		result.AddError("reported %d diagnostics, expected %d: %s", len(got), len(expected), describeAll(got))
		return
	}
	for i, want := range expected {
		d := got[i]
		if d.Severity.String() != want.Severity {
			result.AddError("diagnostic %d is a %s, expected %s", i, d.Severity, want.Severity)
		}
		if !strings.Contains(d.Message, want.Contains) {
			result.AddError("diagnostic %d message %q does not contain %q", i, d.Message, want.Contains)
		}
	}
}

func describeAll(diags []diag.Diagnostic) string {
	if len(diags) == 0 {
		return "none"
	}
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return strings.Join(msgs, "; ")
}
