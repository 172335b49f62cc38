package pgsql

import (
	"context"
	"errors"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// nextDocumentNumberInTx issues the next number for a document family. The
// sequence row is locked FOR UPDATE for the remainder of the surrounding
// transaction, so two concurrent inserts in the same family serialize here
// and can never mint the same number.
func nextDocumentNumberInTx(ctx context.Context, tx pgx.Tx, family domain.DocumentFamily) (string, error) {
	var lastIssued string
	err := tx.QueryRow(ctx,
		`SELECT last_number FROM document_sequences WHERE family = $1 FOR UPDATE;`,
		family,
	).Scan(&lastIssued)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		next := accounting.NextNumber(family.NumberPrefix(), "")
		if _, err := tx.Exec(ctx,
			`INSERT INTO document_sequences (family, last_number) VALUES ($1, $2);`,
			family, next,
		); err != nil {
			return "", apperrors.NewAppError(500, "failed to initialize sequence for family "+string(family), err)
		}
		return next, nil
	case err != nil:
		return "", apperrors.NewAppError(500, "failed to lock sequence for family "+string(family), err)
	}

	next := accounting.NextNumber(family.NumberPrefix(), lastIssued)
	if _, err := tx.Exec(ctx,
		`UPDATE document_sequences SET last_number = $2 WHERE family = $1;`,
		family, next,
	); err != nil {
		return "", apperrors.NewAppError(500, "failed to advance sequence for family "+string(family), err)
	}
	return next, nil
}
