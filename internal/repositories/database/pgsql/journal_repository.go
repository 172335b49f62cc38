package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_app/internal/utils/pagination"
)

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal entry, line
// and ledger data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

// SaveEntry posts an entry in its own transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) (*domain.JournalEntry, []domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	saved, ledgerEntries, err := r.SaveEntryInTx(ctx, tx, entry, lines)
	if err != nil {
		return nil, nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return saved, ledgerEntries, nil
}

// SaveEntryInTx posts an entry inside a caller-owned transaction: assigns the
// JE number, inserts the entry and its lines, appends one ledger entry per
// line carrying the account's running balance, and applies the new account
// balances. Accounts are locked FOR UPDATE for the duration so concurrent
// postings against the same accounts serialize.
func (r *PgxJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) (*domain.JournalEntry, []domain.LedgerEntry, error) {
	number, err := nextDocumentNumberInTx(ctx, tx, domain.FamilyJournal)
	if err != nil {
		return nil, nil, err
	}
	entry.Number = number

	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, number, entry_date, description, status, amount_cents,
			original_entry_id, reversing_entry_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.Number,
		entry.EntryDate,
		entry.Description,
		entry.Status,
		entry.Amount.Cents(),
		entry.OriginalEntryID,
		entry.ReversingEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to insert journal entry "+entry.EntryID, err)
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, nil, err
	}

	// Running balances start from the locked rows and advance line by line in
	// sort order, so each ledger entry snapshots the balance immediately
	// after its own posting.
	currentBalances := make(map[string]domain.Money, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		currentBalances[id] = acc.Balance
	}

	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, debit_cents, credit_cents, memo, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	ledgerQuery := `
		INSERT INTO ledger_entries (ledger_entry_id, entry_id, line_id, account_id, debit_cents, credit_cents, balance_cents, posted_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	ledgerEntries := make([]domain.LedgerEntry, 0, len(lines))
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.LineID,
			entry.EntryID,
			line.AccountID,
			line.Debit.Cents(),
			line.Credit.Cents(),
			line.Memo,
			line.SortOrder,
		)

		account := lockedAccounts[line.AccountID]
		newBalance, err := accounting.PostLine(currentBalances[line.AccountID], line.Debit, line.Credit, account.AccountType)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to post line "+line.LineID, err)
		}
		currentBalances[line.AccountID] = newBalance

		ledgerEntry := domain.LedgerEntry{
			LedgerEntryID: uuid.NewString(),
			EntryID:       entry.EntryID,
			LineID:        line.LineID,
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Balance:       newBalance,
			PostedAt:      entry.CreatedAt,
			CreatedBy:     entry.CreatedBy,
		}
		ledgerEntries = append(ledgerEntries, ledgerEntry)

		batch.Queue(ledgerQuery,
			ledgerEntry.LedgerEntryID,
			ledgerEntry.EntryID,
			ledgerEntry.LineID,
			ledgerEntry.AccountID,
			ledgerEntry.Debit.Cents(),
			ledgerEntry.Credit.Cents(),
			ledgerEntry.Balance.Cents(),
			ledgerEntry.PostedAt,
			ledgerEntry.CreatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to execute line batch for entry "+entry.EntryID, err)
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, currentBalances, entry.CreatedBy, entry.CreatedAt); err != nil {
		return nil, nil, err
	}

	return &entry, ledgerEntries, nil
}

const entryColumns = `entry_id, number, entry_date, description, status, amount_cents, original_entry_id, reversing_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var amountCents int64
	var originalID, reversingID sql.NullString

	err := row.Scan(
		&e.EntryID,
		&e.Number,
		&e.EntryDate,
		&e.Description,
		&e.Status,
		&amountCents,
		&originalID,
		&reversingID,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	e.Amount = domain.MoneyFromCents(amountCents)
	if originalID.Valid {
		e.OriginalEntryID = &originalID.String
	}
	if reversingID.Valid {
		e.ReversingEntryID = &reversingID.String
	}
	return e, nil
}

// FindEntryByID retrieves a journal entry header.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry "+entryID, err)
	}
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of an entry in sort order.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, debit_cents, credit_cents, memo, sort_order
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY sort_order;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var line domain.JournalLine
		var debitCents, creditCents int64
		if err := rows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.AccountID,
			&debitCents,
			&creditCents,
			&line.Memo,
			&line.SortOrder,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		line.Debit = domain.MoneyFromCents(debitCents)
		line.Credit = domain.MoneyFromCents(creditCents)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}
	return lines, nil
}

// ListEntries retrieves a token-paginated page of journal entry headers,
// newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM journal_entries`
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `WHERE (entry_date, created_at) < ($1, $2)`
		args = append(args, lastDate, lastCreatedAt)
		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $1;"
		rows, err = r.Pool.Query(ctx, query, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", scanErr)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

// UpdateEntryStatusAndLinksInTx updates the status and reversal links for an
// entry within the given transaction.
func (r *PgxJournalRepository) UpdateEntryStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, entryID string, status domain.JournalStatus, reversingEntryID *string, originalEntryID *string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2,
		    reversing_entry_id = $3,
		    original_entry_id = COALESCE($4, original_entry_id),
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE entry_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		entryID,
		status,
		reversingEntryID,
		originalEntryID,
		now,
		userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update entry status/links for "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListLedgerEntriesByAccount retrieves a token-paginated page of ledger
// postings for one account, newest first.
func (r *PgxJournalRepository) ListLedgerEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ledger_entry_id, entry_id, line_id, account_id, debit_cents, credit_cents, balance_cents, posted_at, created_by
		FROM ledger_entries
		WHERE account_id = $1
	`
	orderByClause := `ORDER BY posted_at DESC, ledger_entry_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastPostedAt, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		cursorClause := `AND (posted_at, ledger_entry_id) < ($2, $3)`
		args = append(args, lastPostedAt, fields[1])
		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $2;"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, fetchLimit)
	for rows.Next() {
		var le domain.LedgerEntry
		var debitCents, creditCents, balanceCents int64
		if scanErr := rows.Scan(
			&le.LedgerEntryID,
			&le.EntryID,
			&le.LineID,
			&le.AccountID,
			&debitCents,
			&creditCents,
			&balanceCents,
			&le.PostedAt,
			&le.CreatedBy,
		); scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger entry row", scanErr)
		}
		le.Debit = domain.MoneyFromCents(debitCents)
		le.Credit = domain.MoneyFromCents(creditCents)
		le.Balance = domain.MoneyFromCents(balanceCents)
		entries = append(entries, le)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger entry rows", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeMultiFieldToken(last.PostedAt.Format(time.RFC3339Nano), last.LedgerEntryID)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}
