package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

var (
	ErrEntryMinAccounts = errors.New("journal entry must affect at least two different accounts")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountInactive  = errors.New("account is inactive")
)

// journalService posts and voids journal entries and serves the account
// ledger.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildJournalLines converts request lines into domain lines. Monetary
// amounts are converted once at the boundary; everything past this point is
// integer cents.
func buildJournalLines(entryID string, reqLines []dto.JournalLineRequest) []domain.JournalLine {
	lines := make([]domain.JournalLine, len(reqLines))
	for i, lr := range reqLines {
		lines[i] = domain.JournalLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: lr.AccountID,
			Debit:     domain.NewMoneyFromDecimal(lr.Debit),
			Credit:    domain.NewMoneyFromDecimal(lr.Credit),
			Memo:      lr.Memo,
			SortOrder: i + 1,
		}
	}
	return lines
}

// checkAccountsPostable verifies every referenced account exists and is
// active, returning the accounts keyed by ID.
func (s *journalService) checkAccountsPostable(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		acc, found := accounts[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountInactive, id)
		}
	}
	return accounts, nil
}

// PostJournalEntry validates and atomically persists a balanced entry.
func (s *journalService) PostJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, []domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	entryID := uuid.NewString()
	lines := buildJournalLines(entryID, req.Lines)

	if err := accounting.ValidateBalanced(lines); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			accountIDs = append(accountIDs, line.AccountID)
		}
	}
	if len(accountIDs) < 2 {
		return nil, nil, ErrEntryMinAccounts
	}

	if _, err := s.checkAccountsPostable(ctx, accountIDs); err != nil {
		logger.Warn("Journal entry references unusable account", slog.String("error", err.Error()))
		return nil, nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.Date,
		Description: req.Description,
		Status:      domain.JournalPosted,
		Amount:      accounting.EntryAmount(lines),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	saved, ledgerEntries, err := s.journalRepo.SaveEntry(ctx, entry, lines)
	if err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	saved.Lines = lines

	logger.Info("Journal entry posted", slog.String("entry_id", saved.EntryID), slog.String("number", saved.Number), slog.String("amount", saved.Amount.String()))
	return saved, ledgerEntries, nil
}

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		logger.Error("Failed to fetch journal lines", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, apperrors.ErrInternal)
	}
	entry.Lines = lines

	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListParams) ([]domain.JournalEntry, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, nextToken, err := s.journalRepo.ListEntries(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nextToken, nil
}

// VoidJournalEntry voids a posted entry by posting a reversing entry with
// debits and credits swapped, then linking the pair. The original rows are
// never mutated beyond status and linkage; history stays intact.
func (s *journalService) VoidJournalEntry(ctx context.Context, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to fetch entry for void", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}
	if original.Status != domain.JournalPosted {
		return nil, fmt.Errorf("%w: entry status is %s, expected POSTED", apperrors.ErrConflict, original.Status)
	}
	if original.OriginalEntryID != nil {
		return nil, fmt.Errorf("%w: cannot void a reversing entry", apperrors.ErrConflict)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		logger.Error("Failed to fetch lines for void", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to retrieve original lines: %w", err)
	}

	now := time.Now().UTC()
	reversingID := uuid.NewString()

	reversing := domain.JournalEntry{
		EntryID:         reversingID,
		EntryDate:       now,
		Description:     fmt.Sprintf("Reversal of %s: %s", original.Number, original.Description),
		Status:          domain.JournalPosted,
		Amount:          original.Amount,
		OriginalEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	reversingLines := make([]domain.JournalLine, len(originalLines))
	for i, line := range originalLines {
		reversingLines[i] = domain.JournalLine{
			LineID:    uuid.NewString(),
			EntryID:   reversingID,
			AccountID: line.AccountID,
			Debit:     line.Credit,
			Credit:    line.Debit,
			Memo:      line.Memo,
			SortOrder: line.SortOrder,
		}
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin void transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.journalRepo.Rollback(ctx, tx)
	}()

	saved, _, err := s.journalRepo.SaveEntryInTx(ctx, tx, reversing, reversingLines)
	if err != nil {
		logger.Error("Failed to save reversing entry", slog.String("error", err.Error()), slog.String("entry_id", reversingID))
		return nil, fmt.Errorf("failed to save reversing entry: %w", err)
	}

	if err := s.journalRepo.UpdateEntryStatusAndLinksInTx(ctx, tx, original.EntryID, domain.JournalVoid, &reversingID, nil, requestingUserID, now); err != nil {
		logger.Error("Failed to mark original entry void", slog.String("error", err.Error()), slog.String("entry_id", original.EntryID))
		return nil, fmt.Errorf("failed to update original entry: %w", err)
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit void transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to commit void: %w", err)
	}

	saved.Lines = reversingLines
	logger.Info("Journal entry voided", slog.String("entry_id", original.EntryID), slog.String("reversing_entry_id", saved.EntryID))
	return saved, nil
}

func (s *journalService) ListLedgerEntriesByAccount(ctx context.Context, accountID string, params dto.ListParams) ([]domain.LedgerEntry, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// The ledger only answers for accounts that exist.
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, nextToken, err := s.journalRepo.ListLedgerEntriesByAccount(ctx, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list ledger entries", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nextToken, nil
}
