package services_test

import (
	"context"
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

// --- Mock DocumentRepository ---
type MockDocumentRepository struct {
	mock.Mock
}

// Ensure MockDocumentRepository implements portsrepo.DocumentRepositoryFacade
var _ portsrepo.DocumentRepositoryFacade = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) FindQuoteByID(ctx context.Context, documentID string) (*domain.Quote, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockDocumentRepository) FindInvoiceByID(ctx context.Context, documentID string) (*domain.Invoice, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockDocumentRepository) FindSalesOrderByID(ctx context.Context, documentID string) (*domain.SalesOrder, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrder), args.Error(1)
}

func (m *MockDocumentRepository) ListQuotes(ctx context.Context, limit int, nextToken *string) ([]domain.Quote, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Quote), returnedNextToken, args.Error(2)
}

func (m *MockDocumentRepository) ListInvoices(ctx context.Context, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Invoice), returnedNextToken, args.Error(2)
}

func (m *MockDocumentRepository) ListSalesOrders(ctx context.Context, limit int, nextToken *string) ([]domain.SalesOrder, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.SalesOrder), returnedNextToken, args.Error(2)
}

func (m *MockDocumentRepository) SaveQuote(ctx context.Context, quote domain.Quote) (*domain.Quote, error) {
	args := m.Called(ctx, quote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockDocumentRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockDocumentRepository) SaveSalesOrder(ctx context.Context, order domain.SalesOrder) (*domain.SalesOrder, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrder), args.Error(1)
}

func (m *MockDocumentRepository) ReplaceInvoiceLines(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateQuoteStatus(ctx context.Context, documentID string, status domain.QuoteStatus, userID string, now time.Time) error {
	args := m.Called(ctx, documentID, status, userID, now)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateInvoiceStatus(ctx context.Context, documentID string, status domain.InvoiceStatus, userID string, now time.Time) error {
	args := m.Called(ctx, documentID, status, userID, now)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateSalesOrderStatus(ctx context.Context, documentID string, status domain.SalesOrderStatus, userID string, now time.Time) error {
	args := m.Called(ctx, documentID, status, userID, now)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockDocumentRepository) ApplyInvoicePaymentInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	args := m.Called(ctx, tx, invoice)
	return args.Error(0)
}

// --- Test Suite Setup ---
type DocumentServiceTestSuite struct {
	suite.Suite
	mockDocumentRepo *MockDocumentRepository
	service          portssvc.DocumentSvcFacade
	userID           string
	customerID       string
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.service = services.NewDocumentService(suite.mockDocumentRepo)
	suite.userID = uuid.NewString()
	suite.customerID = uuid.NewString()
}

// twoLineRequest builds the standard fixture: 2 x 50.00 plus 1 x 100.00 with a
// 10% line discount, for a 190.00 subtotal.
func (suite *DocumentServiceTestSuite) twoLineRequest() []dto.LineItemRequest {
	return []dto.LineItemRequest{
		{Description: "Widget", Quantity: dec("2"), UnitPrice: dec("50")},
		{Description: "Gadget", Quantity: dec("1"), UnitPrice: dec("100"), DiscountPercent: dec("10")},
	}
}

// --- Test Cases ---

func (suite *DocumentServiceTestSuite) TestCreateInvoice_ComputesTotals() {
	ctx := context.Background()
	issueDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	req := dto.CreateInvoiceRequest{
		CreateDocumentRequest: dto.CreateDocumentRequest{
			CustomerID: suite.customerID,
			IssueDate:  issueDate,
			Lines:      suite.twoLineRequest(),
			TaxRate:    dec("8.5"),
		},
		DueDate: issueDate.AddDate(0, 1, 0),
	}

	suite.mockDocumentRepo.On("SaveInvoice", ctx, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.Subtotal.String() == "190.00" &&
			inv.TaxAmount.String() == "16.15" &&
			inv.Total.String() == "206.15" &&
			inv.AmountDue.String() == "206.15" &&
			inv.AmountPaid.IsZero() &&
			inv.Status == domain.InvoiceDraft &&
			len(inv.Lines) == 2 &&
			inv.Lines[0].LineTotal.String() == "100.00" &&
			inv.Lines[1].LineTotal.String() == "90.00"
	})).Return(&domain.Invoice{
		DocumentHeader: domain.DocumentHeader{Number: "INV-000001"},
		Status:         domain.InvoiceDraft,
	}, nil).Once()

	saved, err := suite.service.CreateInvoice(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("INV-000001", saved.Number)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreateInvoice_CreditMemoDueClampedToZero() {
	ctx := context.Background()
	issueDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	req := dto.CreateInvoiceRequest{
		CreateDocumentRequest: dto.CreateDocumentRequest{
			CustomerID: suite.customerID,
			IssueDate:  issueDate,
			Lines: []dto.LineItemRequest{
				{Description: "Widget", Quantity: dec("1"), UnitPrice: dec("50")},
			},
			DiscountAmount: dec("80"),
		},
		DueDate: issueDate.AddDate(0, 1, 0),
	}

	// A document discount exceeding the subtotal nets a negative total; the
	// invoice still carries no collectible amount.
	suite.mockDocumentRepo.On("SaveInvoice", ctx, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.Total.String() == "-30.00" &&
			inv.AmountDue.IsZero() &&
			!inv.AmountDue.IsNegative() &&
			inv.AmountPaid.IsZero()
	})).Return(&domain.Invoice{
		DocumentHeader: domain.DocumentHeader{Number: "INV-000002"},
		Status:         domain.InvoiceDraft,
	}, nil).Once()

	saved, err := suite.service.CreateInvoice(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("INV-000002", saved.Number)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreateInvoice_DueDateBeforeIssueDate() {
	ctx := context.Background()
	issueDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	req := dto.CreateInvoiceRequest{
		CreateDocumentRequest: dto.CreateDocumentRequest{
			CustomerID: suite.customerID,
			IssueDate:  issueDate,
			Lines:      suite.twoLineRequest(),
		},
		DueDate: issueDate.AddDate(0, 0, -1),
	}

	_, err := suite.service.CreateInvoice(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SaveInvoice", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCreateInvoice_InvalidLineRejected() {
	ctx := context.Background()
	issueDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	req := dto.CreateInvoiceRequest{
		CreateDocumentRequest: dto.CreateDocumentRequest{
			CustomerID: suite.customerID,
			IssueDate:  issueDate,
			Lines: []dto.LineItemRequest{
				{Description: "Bad", Quantity: dec("0"), UnitPrice: dec("10")},
			},
		},
		DueDate: issueDate,
	}

	_, err := suite.service.CreateInvoice(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *DocumentServiceTestSuite) TestCreateQuote_Success() {
	ctx := context.Background()
	req := dto.CreateQuoteRequest{
		CreateDocumentRequest: dto.CreateDocumentRequest{
			CustomerID: suite.customerID,
			IssueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Lines:      suite.twoLineRequest(),
		},
	}

	suite.mockDocumentRepo.On("SaveQuote", ctx, mock.MatchedBy(func(q domain.Quote) bool {
		return q.Status == domain.QuoteDraft &&
			q.Subtotal.String() == "190.00" &&
			q.ShippingAmount.IsZero() &&
			q.Total.String() == "190.00"
	})).Return(&domain.Quote{
		DocumentHeader: domain.DocumentHeader{Number: "QT-000001"},
		Status:         domain.QuoteDraft,
	}, nil).Once()

	saved, err := suite.service.CreateQuote(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("QT-000001", saved.Number)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreateSalesOrder_IncludesShipping() {
	ctx := context.Background()
	req := dto.CreateSalesOrderRequest{
		CreateDocumentRequest: dto.CreateDocumentRequest{
			CustomerID: suite.customerID,
			IssueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Lines:      suite.twoLineRequest(),
		},
		ShippingAmount: dec("12.50"),
	}

	suite.mockDocumentRepo.On("SaveSalesOrder", ctx, mock.MatchedBy(func(so domain.SalesOrder) bool {
		return so.Status == domain.OrderDraft &&
			so.ShippingAmount.String() == "12.50" &&
			so.Total.String() == "202.50"
	})).Return(&domain.SalesOrder{
		DocumentHeader: domain.DocumentHeader{Number: "SO-000001"},
		Status:         domain.OrderDraft,
	}, nil).Once()

	saved, err := suite.service.CreateSalesOrder(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("SO-000001", saved.Number)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestReplaceInvoiceLines_NotDraft() {
	ctx := context.Background()
	invoice := domain.Invoice{
		DocumentHeader: domain.DocumentHeader{DocumentID: uuid.NewString(), Number: "INV-000007"},
		Status:         domain.InvoiceSent,
	}
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoice.DocumentID).Return(&invoice, nil).Once()

	_, err := suite.service.ReplaceInvoiceLines(ctx, invoice.DocumentID, dto.UpdateInvoiceLinesRequest{
		Lines: suite.twoLineRequest(),
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotDraft)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "ReplaceInvoiceLines", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestReplaceInvoiceLines_RecomputesTotals() {
	ctx := context.Background()
	invoice := domain.Invoice{
		DocumentHeader: domain.DocumentHeader{
			DocumentID: uuid.NewString(),
			Number:     "INV-000008",
			Subtotal:   domain.MoneyFromCents(19000),
			Total:      domain.MoneyFromCents(19000),
		},
		Status:    domain.InvoiceDraft,
		AmountDue: domain.MoneyFromCents(19000),
	}
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoice.DocumentID).Return(&invoice, nil).Once()
	suite.mockDocumentRepo.On("ReplaceInvoiceLines", ctx, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.Subtotal.String() == "25.00" &&
			inv.Total.String() == "25.00" &&
			inv.AmountDue.String() == "25.00" &&
			len(inv.Lines) == 1
	})).Return(nil).Once()

	updated, err := suite.service.ReplaceInvoiceLines(ctx, invoice.DocumentID, dto.UpdateInvoiceLinesRequest{
		Lines: []dto.LineItemRequest{
			{Description: "Replacement", Quantity: dec("1"), UnitPrice: dec("25")},
		},
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("25.00", updated.Total.String())
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestUpdateQuoteStatus_InvalidTransition() {
	ctx := context.Background()
	quote := domain.Quote{
		DocumentHeader: domain.DocumentHeader{DocumentID: uuid.NewString()},
		Status:         domain.QuoteDraft,
	}
	suite.mockDocumentRepo.On("FindQuoteByID", ctx, quote.DocumentID).Return(&quote, nil).Once()

	_, err := suite.service.UpdateQuoteStatus(ctx, quote.DocumentID, domain.QuoteAccepted, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "UpdateQuoteStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestUpdateQuoteStatus_SentToAccepted() {
	ctx := context.Background()
	quote := domain.Quote{
		DocumentHeader: domain.DocumentHeader{DocumentID: uuid.NewString()},
		Status:         domain.QuoteSent,
	}
	suite.mockDocumentRepo.On("FindQuoteByID", ctx, quote.DocumentID).Return(&quote, nil).Once()
	suite.mockDocumentRepo.On("UpdateQuoteStatus", ctx, quote.DocumentID, domain.QuoteAccepted, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.UpdateQuoteStatus(ctx, quote.DocumentID, domain.QuoteAccepted, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.QuoteAccepted, updated.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestUpdateInvoiceStatus_SentResolvesToOverdue() {
	ctx := context.Background()
	invoice := domain.Invoice{
		DocumentHeader: domain.DocumentHeader{
			DocumentID: uuid.NewString(),
			Total:      domain.MoneyFromCents(20615),
		},
		Status:    domain.InvoiceDraft,
		DueDate:   time.Now().UTC().AddDate(0, 0, -5),
		AmountDue: domain.MoneyFromCents(20615),
	}
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoice.DocumentID).Return(&invoice, nil).Once()
	// Marking an already-late invoice as sent stores OVERDUE directly.
	suite.mockDocumentRepo.On("UpdateInvoiceStatus", ctx, invoice.DocumentID, domain.InvoiceOverdue, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.UpdateInvoiceStatus(ctx, invoice.DocumentID, domain.InvoiceSent, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.InvoiceOverdue, updated.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestUpdateInvoiceStatus_PaidCannotBeCancelled() {
	ctx := context.Background()
	invoice := domain.Invoice{
		DocumentHeader: domain.DocumentHeader{DocumentID: uuid.NewString()},
		Status:         domain.InvoicePaid,
	}
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoice.DocumentID).Return(&invoice, nil).Once()

	_, err := suite.service.UpdateInvoiceStatus(ctx, invoice.DocumentID, domain.InvoiceCancelled, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func (suite *DocumentServiceTestSuite) TestUpdateSalesOrderStatus_ConfirmedToFulfilled() {
	ctx := context.Background()
	order := domain.SalesOrder{
		DocumentHeader: domain.DocumentHeader{DocumentID: uuid.NewString()},
		Status:         domain.OrderConfirmed,
	}
	suite.mockDocumentRepo.On("FindSalesOrderByID", ctx, order.DocumentID).Return(&order, nil).Once()
	suite.mockDocumentRepo.On("UpdateSalesOrderStatus", ctx, order.DocumentID, domain.OrderFulfilled, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.UpdateSalesOrderStatus(ctx, order.DocumentID, domain.OrderFulfilled, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.OrderFulfilled, updated.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestUpdateSalesOrderStatus_FulfilledIsTerminal() {
	ctx := context.Background()
	order := domain.SalesOrder{
		DocumentHeader: domain.DocumentHeader{DocumentID: uuid.NewString()},
		Status:         domain.OrderFulfilled,
	}
	suite.mockDocumentRepo.On("FindSalesOrderByID", ctx, order.DocumentID).Return(&order, nil).Once()

	_, err := suite.service.UpdateSalesOrderStatus(ctx, order.DocumentID, domain.OrderCancelled, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func (suite *DocumentServiceTestSuite) TestGetInvoiceByID_NotFound() {
	ctx := context.Background()
	invoiceID := uuid.NewString()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, invoiceID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetInvoiceByID(ctx, invoiceID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}
