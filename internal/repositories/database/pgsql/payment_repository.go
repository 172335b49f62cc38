package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_app/internal/utils/pagination"
)

type PgxPaymentRepository struct {
	BaseRepository
	docTx       portsrepo.DocumentTransactionSupport
	journalRepo portsrepo.JournalWriter
}

// newPgxPaymentRepository creates a payment repository. Document and journal
// collaborators are needed because recording a payment may touch an invoice
// and post a journal entry in the same transaction.
func newPgxPaymentRepository(pool *pgxpool.Pool, docTx portsrepo.DocumentTransactionSupport, journalRepo portsrepo.JournalWriter) portsrepo.PaymentRepositoryWithTx {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
		docTx:          docTx,
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.PaymentRepositoryWithTx = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, number, invoice_id, amount_cents, payment_date, method, reference, created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var payment domain.Payment
	var invoiceID sql.NullString
	var amountCents int64
	err := row.Scan(
		&payment.PaymentID,
		&payment.Number,
		&invoiceID,
		&amountCents,
		&payment.Date,
		&payment.Method,
		&payment.Reference,
		&payment.CreatedAt,
		&payment.CreatedBy,
		&payment.LastUpdatedAt,
		&payment.LastUpdatedBy,
	)
	if err != nil {
		return domain.Payment{}, err
	}
	if invoiceID.Valid {
		payment.InvoiceID = &invoiceID.String
	}
	payment.Amount = domain.MoneyFromCents(amountCents)
	return payment, nil
}

// SavePayment persists the payment, applies it to the invoice (when given)
// under a row lock, and posts the journal entry (when given), all in one
// transaction. The PAY number is assigned inside the same transaction.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, invoice *domain.Invoice, entry *domain.JournalEntry) (*domain.Payment, *domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	number, err := nextDocumentNumberInTx(ctx, tx, domain.FamilyPayment)
	if err != nil {
		return nil, nil, err
	}
	payment.Number = number

	var entryID *string
	if entry != nil {
		entryID = &entry.EntryID
	}
	insertQuery := `
		INSERT INTO payments (` + paymentColumns + `, journal_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, insertQuery,
		payment.PaymentID,
		payment.Number,
		payment.InvoiceID,
		payment.Amount.Cents(),
		payment.Date,
		payment.Method,
		payment.Reference,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
		entryID,
	)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to insert payment "+payment.PaymentID, err)
	}

	var updatedInvoice *domain.Invoice
	if invoice != nil {
		// Re-read under a lock so concurrent payments against the same
		// invoice serialize and neither loses the other's paid amount.
		locked, lockErr := r.docTx.FindInvoiceByIDForUpdate(ctx, tx, invoice.DocumentID)
		if lockErr != nil {
			return nil, nil, lockErr
		}
		// The service checked payability on an unlocked read; the invoice may
		// have been cancelled since, so the locked row decides.
		if !accounting.InvoicePayable(locked.Status) {
			return nil, nil, fmt.Errorf("%w: invoice %s status is %s", apperrors.ErrConflict, locked.DocumentID, locked.Status)
		}
		locked.AmountPaid = locked.AmountPaid.Add(payment.Amount)
		locked.AmountDue = accounting.AmountDue(locked.Total, locked.AmountPaid)
		locked.Status = accounting.ResolveInvoiceStatus(locked.Status, locked.Total, locked.AmountPaid, locked.DueDate, time.Now().UTC())
		locked.LastUpdatedAt = payment.CreatedAt
		locked.LastUpdatedBy = payment.CreatedBy
		if applyErr := r.docTx.ApplyInvoicePaymentInTx(ctx, tx, *locked); applyErr != nil {
			return nil, nil, applyErr
		}
		updatedInvoice = locked
	}

	if entry != nil {
		if _, _, postErr := r.journalRepo.SaveEntryInTx(ctx, tx, *entry, entry.Lines); postErr != nil {
			return nil, nil, postErr
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return &payment, updatedInvoice, nil
}

// FindPaymentByID retrieves a payment by its ID.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	payment, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment "+paymentID, err)
	}
	return &payment, nil
}

// ListPayments retrieves a token-paginated page of payments, newest first.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + paymentColumns + ` FROM payments`
	args := []interface{}{}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` WHERE (payment_date, created_at) < ($1, $2)`
		args = append(args, lastDate, lastCreatedAt)
	}
	query += ` ORDER BY payment_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query payments", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, fetchLimit)
	for rows.Next() {
		payment, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan payment row", scanErr)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating payment rows", err)
	}

	var nextTokenVal *string
	if len(payments) > limit {
		last := payments[limit-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		nextTokenVal = &token
		payments = payments[:limit]
	}
	return payments, nextTokenVal, nil
}
