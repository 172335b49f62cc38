package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/core/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

// Ensure MockPaymentRepository implements portsrepo.PaymentRepositoryFacade
var _ portsrepo.PaymentRepositoryFacade = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Payment), returnedNextToken, args.Error(2)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, invoice *domain.Invoice, entry *domain.JournalEntry) (*domain.Payment, *domain.Invoice, error) {
	args := m.Called(ctx, payment, invoice, entry)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var updatedInvoice *domain.Invoice
	if args.Get(1) != nil {
		updatedInvoice = args.Get(1).(*domain.Invoice)
	}
	return args.Get(0).(*domain.Payment), updatedInvoice, args.Error(2)
}

// --- Test Suite Setup ---
type PaymentServiceTestSuite struct {
	suite.Suite
	mockPaymentRepo  *MockPaymentRepository
	mockDocumentRepo *MockDocumentRepository
	mockAccountRepo  *MockAccountRepository
	service          portssvc.PaymentSvcFacade
	userID           string
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewPaymentService(suite.mockPaymentRepo, suite.mockDocumentRepo, suite.mockAccountRepo)
	suite.userID = uuid.NewString()
}

func sentInvoice(totalCents int64) *domain.Invoice {
	total := domain.MoneyFromCents(totalCents)
	return &domain.Invoice{
		DocumentHeader: domain.DocumentHeader{
			DocumentID: uuid.NewString(),
			Number:     "INV-000042",
			Total:      total,
		},
		Status:    domain.InvoiceSent,
		DueDate:   time.Now().UTC().AddDate(0, 1, 0),
		AmountDue: total,
	}
}

// --- Test Cases ---

func (suite *PaymentServiceTestSuite) TestRecordPayment_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.RecordPaymentRequest{Amount: dec("0"), Date: time.Now(), Method: "CASH"}

	_, _, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_UnknownMethod() {
	ctx := context.Background()
	req := dto.RecordPaymentRequest{Amount: dec("10"), Date: time.Now(), Method: "BARTER"}

	_, _, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_PartialGLAccountsRejected() {
	ctx := context.Background()
	depositID := uuid.NewString()
	req := dto.RecordPaymentRequest{
		Amount:           dec("10"),
		Date:             time.Now(),
		Method:           "CASH",
		DepositAccountID: &depositID,
	}

	_, _, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrPartialGLAccounts)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_DraftInvoiceRejected() {
	ctx := context.Background()
	invoice := sentInvoice(20615)
	invoice.Status = domain.InvoiceDraft
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoice.DocumentID).Return(invoice, nil).Once()

	req := dto.RecordPaymentRequest{
		InvoiceID: &invoice.DocumentID,
		Amount:    dec("100"),
		Date:      time.Now(),
		Method:    "CARD",
	}

	_, _, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvoiceNotPayable)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_CancelledInvoiceRejected() {
	ctx := context.Background()
	invoice := sentInvoice(20615)
	invoice.Status = domain.InvoiceCancelled
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoice.DocumentID).Return(invoice, nil).Once()

	req := dto.RecordPaymentRequest{
		InvoiceID: &invoice.DocumentID,
		Amount:    dec("100"),
		Date:      time.Now(),
		Method:    "CARD",
	}

	_, _, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvoiceNotPayable)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_FullPaymentSettlesInvoice() {
	ctx := context.Background()
	invoice := sentInvoice(20615)
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoice.DocumentID).Return(invoice, nil).Once()

	settled := *invoice
	settled.Status = domain.InvoicePaid
	settled.AmountPaid = domain.MoneyFromCents(20615)
	settled.AmountDue = domain.ZeroMoney

	suite.mockPaymentRepo.On("SavePayment", ctx,
		mock.MatchedBy(func(p domain.Payment) bool {
			return p.Amount.String() == "206.15" && p.Method == domain.MethodTransfer && p.InvoiceID != nil
		}),
		mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv != nil && inv.DocumentID == invoice.DocumentID
		}),
		(*domain.JournalEntry)(nil),
	).Return(&domain.Payment{
		PaymentID: uuid.NewString(),
		Number:    "PAY-000001",
		InvoiceID: &invoice.DocumentID,
		Amount:    domain.MoneyFromCents(20615),
		Method:    domain.MethodTransfer,
	}, &settled, nil).Once()

	req := dto.RecordPaymentRequest{
		InvoiceID: &invoice.DocumentID,
		Amount:    dec("206.15"),
		Date:      time.Now(),
		Method:    "TRANSFER",
		Reference: "wire-8841",
	}

	payment, updatedInvoice, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("PAY-000001", payment.Number)
	suite.Require().NotNil(updatedInvoice)
	suite.Equal(domain.InvoicePaid, updatedInvoice.Status)
	suite.Equal("0.00", updatedInvoice.AmountDue.String())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_WithGLPosting() {
	ctx := context.Background()
	deposit := newActiveAccount(domain.Asset, "1110")
	receivable := newActiveAccount(domain.Asset, "1200")

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{deposit.AccountID, receivable.AccountID}).Return(map[string]domain.Account{
		deposit.AccountID:    deposit,
		receivable.AccountID: receivable,
	}, nil).Once()

	suite.mockPaymentRepo.On("SavePayment", ctx,
		mock.AnythingOfType("domain.Payment"),
		(*domain.Invoice)(nil),
		mock.MatchedBy(func(e *domain.JournalEntry) bool {
			return e != nil && len(e.Lines) == 2 &&
				e.Lines[0].AccountID == deposit.AccountID && e.Lines[0].Debit.String() == "50.00" &&
				e.Lines[1].AccountID == receivable.AccountID && e.Lines[1].Credit.String() == "50.00"
		}),
	).Return(&domain.Payment{
		PaymentID: uuid.NewString(),
		Number:    "PAY-000002",
		Amount:    domain.MoneyFromCents(5000),
		Method:    domain.MethodCash,
	}, nil, nil).Once()

	req := dto.RecordPaymentRequest{
		Amount:              dec("50"),
		Date:                time.Now(),
		Method:              "CASH",
		DepositAccountID:    &deposit.AccountID,
		ReceivableAccountID: &receivable.AccountID,
	}

	payment, updatedInvoice, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("PAY-000002", payment.Number)
	suite.Nil(updatedInvoice)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_SameGLAccountRejected() {
	ctx := context.Background()
	account := newActiveAccount(domain.Asset, "1110")

	req := dto.RecordPaymentRequest{
		Amount:              dec("50"),
		Date:                time.Now(),
		Method:              "CASH",
		DepositAccountID:    &account.AccountID,
		ReceivableAccountID: &account.AccountID,
	}

	_, _, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_InactiveGLAccountRejected() {
	ctx := context.Background()
	deposit := newActiveAccount(domain.Asset, "1110")
	receivable := newActiveAccount(domain.Asset, "1200")
	receivable.IsActive = false

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{deposit.AccountID, receivable.AccountID}).Return(map[string]domain.Account{
		deposit.AccountID:    deposit,
		receivable.AccountID: receivable,
	}, nil).Once()

	req := dto.RecordPaymentRequest{
		Amount:              dec("50"),
		Date:                time.Now(),
		Method:              "CASH",
		DepositAccountID:    &deposit.AccountID,
		ReceivableAccountID: &receivable.AccountID,
	}

	_, _, err := suite.service.RecordPayment(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
}

func (suite *PaymentServiceTestSuite) TestGetPaymentByID_NotFound() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	suite.mockPaymentRepo.On("FindPaymentByID", ctx, paymentID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetPaymentByID(ctx, paymentID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
