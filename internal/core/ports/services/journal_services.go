package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves a journal entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a token-paginated list of journal entry headers.
	ListEntries(ctx context.Context, params dto.ListParams) ([]domain.JournalEntry, *string, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostJournalEntry validates balance and account references, then
	// atomically persists the entry, its lines, the resulting ledger
	// entries and the updated account balances.
	PostJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, []domain.LedgerEntry, error)

	// VoidJournalEntry voids a posted entry by posting a reversing entry
	// with debits and credits swapped, linking the two entries.
	VoidJournalEntry(ctx context.Context, entryID string, requestingUserID string) (*domain.JournalEntry, error)
}

// LedgerReaderSvc defines read operations for the account ledger
type LedgerReaderSvc interface {
	// ListLedgerEntriesByAccount retrieves ledger postings for an account.
	ListLedgerEntriesByAccount(ctx context.Context, accountID string, params dto.ListParams) ([]domain.LedgerEntry, *string, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	LedgerReaderSvc
}
