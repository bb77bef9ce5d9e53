package store

import (
	"context"
	"database/sql"
	"fmt"
	"go/token"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/diag"
)

// IndexedContract is one declaration's contract as recorded in the index.
type IndexedContract struct {
	File     string
	Function string
	Receiver string
	Line     int
	NoDoc    bool
	// Clauses in canonical order, reconstructed from their display forms.
	Clauses []contract.Precondition
}

// ContractsForFile returns the contracts of the latest indexed pass for one
// file, ordered by line. Returns an empty slice if the file was never
// indexed.
func (s *Store) ContractsForFile(ctx context.Context, file string) ([]IndexedContract, error) {
	return s.queryContracts(ctx, `
		SELECT id, file, function, receiver, line, no_doc
		FROM contracts
		WHERE file = ?
		ORDER BY line ASC, function COLLATE BINARY ASC
	`, file)
}

// FindContracts returns every indexed contract for the given function or
// method name, across all files.
func (s *Store) FindContracts(ctx context.Context, function string) ([]IndexedContract, error) {
	return s.queryContracts(ctx, `
		SELECT id, file, function, receiver, line, no_doc
		FROM contracts
		WHERE function = ?
		ORDER BY file COLLATE BINARY ASC, line ASC
	`, function)
}

// AllContracts returns every indexed contract, ordered by file and line.
func (s *Store) AllContracts(ctx context.Context) ([]IndexedContract, error) {
	return s.queryContracts(ctx, `
		SELECT id, file, function, receiver, line, no_doc
		FROM contracts
		ORDER BY file COLLATE BINARY ASC, line ASC
	`)
}

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]IndexedContract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	contracts := []IndexedContract{}
	ids := []string{}
	for rows.Next() {
		var id string
		var c IndexedContract
		if err := rows.Scan(&id, &c.File, &c.Function, &c.Receiver, &c.Line, &c.NoDoc); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}

	for i, id := range ids {
		clauses, err := s.readClauses(ctx, id)
		if err != nil {
			return nil, err
		}
		contracts[i].Clauses = clauses
	}

	return contracts, nil
}

// readClauses loads one contract's clauses in recorded (canonical) order.
// The display form round-trips through the clause parser.
func (s *Store) readClauses(ctx context.Context, contractID string) ([]contract.Precondition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT display
		FROM clauses
		WHERE contract_id = ?
		ORDER BY position ASC
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("query clauses: %w", err)
	}
	defer rows.Close()

	var clauses []contract.Precondition
	for rows.Next() {
		var display string
		if err := rows.Scan(&display); err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		p, err := contract.Parse(display)
		if err != nil {
			return nil, fmt.Errorf("stored clause %q no longer parses: %w", display, err)
		}
		clauses = append(clauses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clauses: %w", err)
	}

	return clauses, nil
}

// Diagnostics returns the diagnostics of the latest indexed pass for one
// file, in recorded order.
func (s *Store) Diagnostics(ctx context.Context, file string) ([]diag.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.severity, d.file, d.line, d.col, d.message, d.help
		FROM diagnostics d
		JOIN passes p ON p.id = d.pass_id
		WHERE p.file = ?
		ORDER BY d.rowid ASC
	`, file)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []diag.Diagnostic{}
	for rows.Next() {
		var severity string
		var pos token.Position
		var d diag.Diagnostic
		if err := rows.Scan(&severity, &pos.Filename, &pos.Line, &pos.Column, &d.Message, &d.Help); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		if severity == diag.Error.String() {
			d.Severity = diag.Error
		}
		d.Pos = pos
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}

	return diags, nil
}

// PassFor returns the pass ID and rewritten flag of the latest indexed pass
// for a file. Returns sql.ErrNoRows if the file was never indexed.
func (s *Store) PassFor(ctx context.Context, file string) (string, bool, error) {
	var id string
	var rewritten bool
	err := s.db.QueryRowContext(ctx, `
		SELECT id, rewritten
		FROM passes
		WHERE file = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, file).Scan(&id, &rewritten)
	if err == sql.ErrNoRows {
		return "", false, err
	}
	if err != nil {
		return "", false, fmt.Errorf("query pass: %w", err)
	}
	return id, rewritten, nil
}
