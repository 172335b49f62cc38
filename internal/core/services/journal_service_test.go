package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/core/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) (*domain.JournalEntry, []domain.LedgerEntry, error) {
	args := m.Called(ctx, entry, lines)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var ledgerEntries []domain.LedgerEntry
	if args.Get(1) != nil {
		ledgerEntries = args.Get(1).([]domain.LedgerEntry)
	}
	return args.Get(0).(*domain.JournalEntry), ledgerEntries, args.Error(2)
}

func (m *MockJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) (*domain.JournalEntry, []domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, entry, lines)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var ledgerEntries []domain.LedgerEntry
	if args.Get(1) != nil {
		ledgerEntries = args.Get(1).([]domain.LedgerEntry)
	}
	return args.Get(0).(*domain.JournalEntry), ledgerEntries, args.Error(2)
}

func (m *MockJournalRepository) UpdateEntryStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, entryID string, status domain.JournalStatus, reversingEntryID *string, originalEntryID *string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, entryID, status, reversingEntryID, originalEntryID, userID, now)
	return args.Error(0)
}

func (m *MockJournalRepository) ListLedgerEntriesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerEntry), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---
type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.JournalSvcFacade
	assetAccount    domain.Account
	revenueAccount  domain.Account
	inactiveAccount domain.Account
	userID          string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountRepo)

	suite.userID = uuid.NewString()
	suite.assetAccount = newActiveAccount(domain.Asset, "1110")
	suite.revenueAccount = newActiveAccount(domain.Revenue, "4000")
	suite.inactiveAccount = newActiveAccount(domain.Expense, "5000")
	suite.inactiveAccount.IsActive = false
}

func (suite *JournalServiceTestSuite) balancedRequest() dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "March service revenue",
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: dec("100")},
			{AccountID: suite.revenueAccount.AccountID, Credit: dec("100")},
		},
	}
}

// --- Test Cases ---

func (suite *JournalServiceTestSuite) TestPostJournalEntry_Success() {
	ctx := context.Background()
	req := suite.balancedRequest()

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:   suite.assetAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.assetAccount.AccountID, suite.revenueAccount.AccountID}).Return(accountsMap, nil).Once()

	ledgerEntries := []domain.LedgerEntry{
		{LedgerEntryID: uuid.NewString(), AccountID: suite.assetAccount.AccountID, Balance: domain.MoneyFromCents(10000)},
		{LedgerEntryID: uuid.NewString(), AccountID: suite.revenueAccount.AccountID, Balance: domain.MoneyFromCents(10000)},
	}
	suite.mockJournalRepo.On("SaveEntry", ctx,
		mock.MatchedBy(func(e domain.JournalEntry) bool {
			return e.Status == domain.JournalPosted && e.Amount.String() == "100.00"
		}),
		mock.MatchedBy(func(lines []domain.JournalLine) bool {
			return len(lines) == 2 &&
				lines[0].Debit.String() == "100.00" && lines[0].Credit.IsZero() &&
				lines[1].Credit.String() == "100.00" && lines[1].Debit.IsZero()
		}),
	).Return(&domain.JournalEntry{
		EntryID: uuid.NewString(),
		Number:  "JE-000001",
		Status:  domain.JournalPosted,
		Amount:  domain.MoneyFromCents(10000),
	}, ledgerEntries, nil).Once()

	saved, createdLedger, err := suite.service.PostJournalEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("JE-000001", saved.Number)
	suite.Len(saved.Lines, 2)
	suite.Len(createdLedger, 2)
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[1].Credit = dec("90")

	_, _, err := suite.service.PostJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_SingleAccount() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		Date:        time.Now(),
		Description: "Self transfer",
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: dec("100")},
			{AccountID: suite.assetAccount.AccountID, Credit: dec("100")},
		},
	}

	_, _, err := suite.service.PostJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryMinAccounts)
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_InactiveAccount() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		Date:        time.Now(),
		Description: "Posting to closed account",
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: dec("50")},
			{AccountID: suite.inactiveAccount.AccountID, Credit: dec("50")},
		},
	}

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:    suite.assetAccount,
		suite.inactiveAccount.AccountID: suite.inactiveAccount,
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accountsMap, nil).Once()

	_, _, err := suite.service.PostJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestVoidJournalEntry_Success() {
	ctx := context.Background()
	original := domain.JournalEntry{
		EntryID:     uuid.NewString(),
		Number:      "JE-000001",
		Status:      domain.JournalPosted,
		Amount:      domain.MoneyFromCents(10000),
		Description: "March service revenue",
	}
	originalLines := []domain.JournalLine{
		{LineID: uuid.NewString(), EntryID: original.EntryID, AccountID: suite.assetAccount.AccountID, Debit: domain.MoneyFromCents(10000), SortOrder: 1},
		{LineID: uuid.NewString(), EntryID: original.EntryID, AccountID: suite.revenueAccount.AccountID, Credit: domain.MoneyFromCents(10000), SortOrder: 2},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, original.EntryID).Return(&original, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, original.EntryID).Return(originalLines, nil).Once()
	suite.mockJournalRepo.On("Begin", ctx).Return(nil, nil).Once()

	suite.mockJournalRepo.On("SaveEntryInTx", ctx, mock.Anything,
		mock.MatchedBy(func(e domain.JournalEntry) bool {
			return e.OriginalEntryID != nil && *e.OriginalEntryID == original.EntryID &&
				strings.HasPrefix(e.Description, "Reversal of JE-000001") &&
				e.Amount.String() == "100.00"
		}),
		mock.MatchedBy(func(lines []domain.JournalLine) bool {
			// Debits and credits swap on the reversing entry.
			return len(lines) == 2 &&
				lines[0].Credit.String() == "100.00" && lines[0].Debit.IsZero() &&
				lines[1].Debit.String() == "100.00" && lines[1].Credit.IsZero()
		}),
	).Return(&domain.JournalEntry{
		EntryID: uuid.NewString(),
		Number:  "JE-000002",
		Status:  domain.JournalPosted,
		Amount:  domain.MoneyFromCents(10000),
	}, []domain.LedgerEntry{}, nil).Once()

	suite.mockJournalRepo.On("UpdateEntryStatusAndLinksInTx", ctx, mock.Anything, original.EntryID, domain.JournalVoid,
		mock.AnythingOfType("*string"), (*string)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockJournalRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("Rollback", ctx, mock.Anything).Return(nil)

	reversing, err := suite.service.VoidJournalEntry(ctx, original.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("JE-000002", reversing.Number)
	suite.Len(reversing.Lines, 2)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestVoidJournalEntry_AlreadyVoid() {
	ctx := context.Background()
	original := domain.JournalEntry{
		EntryID: uuid.NewString(),
		Status:  domain.JournalVoid,
	}
	suite.mockJournalRepo.On("FindEntryByID", ctx, original.EntryID).Return(&original, nil).Once()

	_, err := suite.service.VoidJournalEntry(ctx, original.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestVoidJournalEntry_CannotVoidReversal() {
	ctx := context.Background()
	someOriginal := uuid.NewString()
	reversal := domain.JournalEntry{
		EntryID:         uuid.NewString(),
		Status:          domain.JournalPosted,
		OriginalEntryID: &someOriginal,
	}
	suite.mockJournalRepo.On("FindEntryByID", ctx, reversal.EntryID).Return(&reversal, nil).Once()

	_, err := suite.service.VoidJournalEntry(ctx, reversal.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *JournalServiceTestSuite) TestListLedgerEntries_AccountMustExist() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.ListLedgerEntriesByAccount(ctx, accountID, dto.ListParams{Limit: 10})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "ListLedgerEntriesByAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestGetEntryByID_IncludesLines() {
	ctx := context.Background()
	entry := domain.JournalEntry{EntryID: uuid.NewString(), Number: "JE-000003", Status: domain.JournalPosted}
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), EntryID: entry.EntryID, AccountID: suite.assetAccount.AccountID, Debit: domain.MoneyFromCents(500), SortOrder: 1},
		{LineID: uuid.NewString(), EntryID: entry.EntryID, AccountID: suite.revenueAccount.AccountID, Credit: domain.MoneyFromCents(500), SortOrder: 2},
	}
	suite.mockJournalRepo.On("FindEntryByID", ctx, entry.EntryID).Return(&entry, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()

	got, err := suite.service.GetEntryByID(ctx, entry.EntryID)

	suite.Require().NoError(err)
	suite.Len(got.Lines, 2)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
