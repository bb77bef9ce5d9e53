package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/rewrite"
)

// RecordPass stores the outcome of one rewrite pass for a file. Any earlier
// passes indexed for the same file are replaced, so the index always
// reflects the latest run per file. The whole write is one transaction.
func (s *Store) RecordPass(ctx context.Context, file string, res *rewrite.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record pass: %w", err)
	}
	defer tx.Rollback()

	// Cascades into contracts, clauses and diagnostics of older passes.
	if _, err := tx.ExecContext(ctx, `DELETE FROM passes WHERE file = ?`, file); err != nil {
		return fmt.Errorf("record pass: replace previous pass: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO passes (id, file, rewritten)
		VALUES (?, ?, ?)
	`, res.PassID.String(), file, res.Rewritten); err != nil {
		return fmt.Errorf("record pass: %w", err)
	}

	for _, c := range res.Contracts {
		contractID := uuid.New().String()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contracts (id, pass_id, file, function, receiver, line, no_doc)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, contractID, res.PassID.String(), file, c.Name, c.Receiver, c.Pos.Line, c.NoDoc); err != nil {
			return fmt.Errorf("record contract %s: %w", c.Name, err)
		}

		for i, clause := range c.Clauses {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO clauses (contract_id, position, kind, canonical, display)
				VALUES (?, ?, ?, ?, ?)
			`, contractID, i, clause.Kind.String(), contract.Canonical(clause), contract.Display(clause)); err != nil {
				return fmt.Errorf("record clause of %s: %w", c.Name, err)
			}
		}
	}

	for _, d := range res.Diagnostics {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO diagnostics (pass_id, severity, file, line, col, message, help)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, res.PassID.String(), d.Severity.String(), d.Pos.Filename, d.Pos.Line, d.Pos.Column, d.Message, d.Help); err != nil {
			return fmt.Errorf("record diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record pass: %w", err)
	}
	return nil
}
