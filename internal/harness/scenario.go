package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aticu/pre/internal/encode"
)

// Scenario defines one conformance scenario: a source file to rewrite and
// the expectations on the pass outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Strategy selects the contract encoding: "structural" (default) or
	// "nominal".
	Strategy string `yaml:"strategy,omitempty"`

	// Tags lists enabled build tags for when(...) predicates.
	Tags []string `yaml:"tags,omitempty"`

	// Input is the annotated Go source handed to the engine.
	Input string `yaml:"input"`

	// Expect holds the assertions evaluated against the pass result.
	Expect Expectations `yaml:"expect"`
}

// Expectations are evaluated by Run; every failed expectation becomes one
// result error.
type Expectations struct {
	// Rewritten asserts whether the pass produced rewritten output. If nil,
	// the flag is not checked.
	Rewritten *bool `yaml:"rewritten,omitempty"`

	// Contains lists substrings the output must include.
	Contains []string `yaml:"contains,omitempty"`

	// NotContains lists substrings the output must not include.
	NotContains []string `yaml:"not_contains,omitempty"`

	// Contracts lists the function names whose contracts must have been
	// recorded, in any order.
	Contracts []string `yaml:"contracts,omitempty"`

	// Diagnostics lists expected diagnostics. The pass must report exactly
	// this many, each matching by severity and message substring, in order.
	Diagnostics []ExpectedDiagnostic `yaml:"diagnostics,omitempty"`
}

// ExpectedDiagnostic matches one reported diagnostic.
type ExpectedDiagnostic struct {
	// Severity is "warning" or "error".
	Severity string `yaml:"severity"`

	// Contains is the required message substring.
	Contains string `yaml:"contains"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadDir loads every *.yaml scenario in a directory, sorted by filename
// for deterministic test order.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Validate checks the scenario for structural problems before it runs.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(s.Input) == "" {
		return fmt.Errorf("input is required")
	}
	if _, err := s.strategy(); err != nil {
		return err
	}
	for i, d := range s.Expect.Diagnostics {
		if d.Severity != "warning" && d.Severity != "error" {
			return fmt.Errorf("diagnostics[%d]: severity must be warning or error, got %q", i, d.Severity)
		}
		if d.Contains == "" {
			return fmt.Errorf("diagnostics[%d]: contains is required", i)
		}
	}
	return nil
}

func (s *Scenario) strategy() (encode.Strategy, error) {
	switch s.Strategy {
	case "", "structural":
		return encode.Structural, nil
	case "nominal":
		return encode.Nominal, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s.Strategy)
	}
}

func (s *Scenario) tagSet() map[string]bool {
	if len(s.Tags) == 0 {
		return nil
	}
	tags := make(map[string]bool, len(s.Tags))
	for _, tag := range s.Tags {
		tags[tag] = true
	}
	return tags
}
