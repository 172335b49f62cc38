package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalReader defines read operations for journal entries.
type JournalReader interface {
	// FindEntryByID retrieves a journal entry header.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of an entry in sort order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves a token-paginated page of journal entry headers.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	// SaveEntry persists a posted entry, its lines and one ledger entry per
	// line (carrying running balances), and applies the account balance
	// updates, all within a single transaction. The entry number is assigned
	// from the JE sequence inside that transaction. Returns the stored entry
	// and the created ledger entries in line order.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) (*domain.JournalEntry, []domain.LedgerEntry, error)

	// SaveEntryInTx is SaveEntry running inside a caller-owned transaction,
	// used when a posting must commit atomically with other rows (payment
	// recording, voiding).
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) (*domain.JournalEntry, []domain.LedgerEntry, error)

	// UpdateEntryStatusAndLinksInTx updates an entry's status and reversal
	// linkage within the given transaction.
	UpdateEntryStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, entryID string, status domain.JournalStatus, reversingEntryID *string, originalEntryID *string, userID string, now time.Time) error
}

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// ListLedgerEntriesByAccount retrieves a token-paginated page of ledger
	// postings for one account, newest first.
	ListLedgerEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LedgerReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction
// capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
