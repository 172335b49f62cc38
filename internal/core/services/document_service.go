package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

var (
	ErrNotDraft          = errors.New("document must be in DRAFT status to be edited")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Allowed manual transitions per document family. Payment-driven invoice
// statuses (PARTIAL, PAID, OVERDUE) are derived, never set by hand.
var (
	quoteTransitions = map[domain.QuoteStatus][]domain.QuoteStatus{
		domain.QuoteDraft: {domain.QuoteSent},
		domain.QuoteSent:  {domain.QuoteAccepted, domain.QuoteDeclined, domain.QuoteExpired},
	}
	invoiceTransitions = map[domain.InvoiceStatus][]domain.InvoiceStatus{
		domain.InvoiceDraft:   {domain.InvoiceSent, domain.InvoiceCancelled},
		domain.InvoiceSent:    {domain.InvoiceCancelled},
		domain.InvoicePartial: {domain.InvoiceCancelled},
		domain.InvoiceOverdue: {domain.InvoiceCancelled},
	}
	orderTransitions = map[domain.SalesOrderStatus][]domain.SalesOrderStatus{
		domain.OrderDraft:     {domain.OrderConfirmed, domain.OrderCancelled},
		domain.OrderConfirmed: {domain.OrderFulfilled, domain.OrderCancelled},
	}
)

// documentService creates and manages quotes, invoices and sales orders. All
// monetary fields are derived through the calculation core; client-supplied
// totals are never trusted.
type documentService struct {
	documentRepo portsrepo.DocumentRepositoryFacade
}

// NewDocumentService creates a new document service.
func NewDocumentService(documentRepo portsrepo.DocumentRepositoryFacade) portssvc.DocumentSvcFacade {
	return &documentService{documentRepo: documentRepo}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// buildLines converts request lines to domain lines with derived totals.
func buildLines(documentID string, reqLines []dto.LineItemRequest) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, len(reqLines))
	for i, lr := range reqLines {
		total, err := accounting.ComputeLineTotal(lr.Quantity, lr.UnitPrice, lr.DiscountPercent, lr.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", apperrors.ErrValidation, i+1, err.Error())
		}
		sortOrder := lr.SortOrder
		if sortOrder == 0 {
			sortOrder = i + 1
		}
		lines[i] = domain.LineItem{
			LineItemID:      uuid.NewString(),
			DocumentID:      documentID,
			Description:     lr.Description,
			Quantity:        lr.Quantity,
			UnitPrice:       lr.UnitPrice,
			DiscountPercent: lr.DiscountPercent,
			TaxRate:         lr.TaxRate,
			LineTotal:       total,
			SortOrder:       sortOrder,
		}
	}
	return lines, nil
}

// buildHeader computes document totals and assembles the shared header.
// The number is left empty; the repository assigns it from the family
// sequence when the document is first saved.
func buildHeader(documentID string, req dto.CreateDocumentRequest, lines []domain.LineItem, shipping decimal.Decimal, creatorUserID string, now time.Time) (domain.DocumentHeader, error) {
	totals, err := accounting.ComputeDocumentTotals(lines, req.DiscountAmount, req.TaxRate, shipping)
	if err != nil {
		return domain.DocumentHeader{}, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return domain.DocumentHeader{
		DocumentID:     documentID,
		CustomerID:     req.CustomerID,
		IssueDate:      req.IssueDate,
		Subtotal:       totals.Subtotal,
		TaxRate:        req.TaxRate,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: totals.DiscountAmount,
		ShippingAmount: domain.NewMoneyFromDecimal(shipping),
		Total:          totals.Total,
		Notes:          req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}, nil
}

func validTransition[S comparable](allowed map[S][]S, from, to S) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// --- Quotes ---

func (s *documentService) CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, creatorUserID string) (*domain.Quote, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	documentID := uuid.NewString()

	lines, err := buildLines(documentID, req.Lines)
	if err != nil {
		return nil, err
	}
	header, err := buildHeader(documentID, req.CreateDocumentRequest, lines, decimal.Zero, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	quote := domain.Quote{
		DocumentHeader: header,
		Status:         domain.QuoteDraft,
		ExpiryDate:     req.ExpiryDate,
		Lines:          lines,
	}

	saved, err := s.documentRepo.SaveQuote(ctx, quote)
	if err != nil {
		logger.Error("Failed to save quote", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}

	logger.Info("Quote created successfully", slog.String("document_id", saved.DocumentID), slog.String("number", saved.Number))
	return saved, nil
}

func (s *documentService) GetQuoteByID(ctx context.Context, quoteID string) (*domain.Quote, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	quote, err := s.documentRepo.FindQuoteByID(ctx, quoteID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find quote by ID", slog.String("error", err.Error()), slog.String("document_id", quoteID))
		}
		return nil, err
	}
	return quote, nil
}

func (s *documentService) ListQuotes(ctx context.Context, params dto.ListParams) ([]domain.Quote, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	quotes, nextToken, err := s.documentRepo.ListQuotes(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list quotes", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, nextToken, nil
}

func (s *documentService) UpdateQuoteStatus(ctx context.Context, quoteID string, status domain.QuoteStatus, requestingUserID string) (*domain.Quote, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	quote, err := s.documentRepo.FindQuoteByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !validTransition(quoteTransitions, quote.Status, status) {
		return nil, fmt.Errorf("%w: quote %s -> %s", ErrInvalidTransition, quote.Status, status)
	}

	now := time.Now().UTC()
	quote.Status = status
	quote.LastUpdatedAt = now
	quote.LastUpdatedBy = requestingUserID

	if err := s.documentRepo.UpdateQuoteStatus(ctx, quoteID, status, requestingUserID, now); err != nil {
		logger.Error("Failed to update quote status", slog.String("error", err.Error()), slog.String("document_id", quoteID))
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}

	logger.Info("Quote status updated", slog.String("document_id", quoteID), slog.String("status", string(status)))
	return quote, nil
}

// --- Invoices ---

func (s *documentService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.DueDate.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: due date precedes issue date", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	documentID := uuid.NewString()

	lines, err := buildLines(documentID, req.Lines)
	if err != nil {
		return nil, err
	}
	header, err := buildHeader(documentID, req.CreateDocumentRequest, lines, decimal.Zero, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	invoice := domain.Invoice{
		DocumentHeader: header,
		Status:         domain.InvoiceDraft,
		DueDate:        req.DueDate,
		AmountPaid:     domain.ZeroMoney,
		AmountDue:      accounting.AmountDue(header.Total, domain.ZeroMoney),
		Lines:          lines,
	}

	saved, err := s.documentRepo.SaveInvoice(ctx, invoice)
	if err != nil {
		logger.Error("Failed to save invoice", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	logger.Info("Invoice created successfully", slog.String("document_id", saved.DocumentID), slog.String("number", saved.Number))
	return saved, nil
}

func (s *documentService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	invoice, err := s.documentRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find invoice by ID", slog.String("error", err.Error()), slog.String("document_id", invoiceID))
		}
		return nil, err
	}
	return invoice, nil
}

func (s *documentService) ListInvoices(ctx context.Context, params dto.ListParams) ([]domain.Invoice, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	invoices, nextToken, err := s.documentRepo.ListInvoices(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list invoices", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nextToken, nil
}

// ReplaceInvoiceLines swaps an invoice's lines for a new set and recomputes
// every derived header field. Only draft invoices may be edited; anything
// later in the lifecycle is corrected with a credit note or a new invoice.
func (s *documentService) ReplaceInvoiceLines(ctx context.Context, invoiceID string, req dto.UpdateInvoiceLinesRequest, requestingUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.documentRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find invoice for line replacement", slog.String("error", err.Error()), slog.String("document_id", invoiceID))
		}
		return nil, err
	}
	if invoice.Status != domain.InvoiceDraft {
		return nil, fmt.Errorf("%w: invoice status is %s", ErrNotDraft, invoice.Status)
	}

	lines, err := buildLines(invoiceID, req.Lines)
	if err != nil {
		return nil, err
	}
	totals, err := accounting.ComputeDocumentTotals(lines, invoice.DiscountAmount.Decimal(), invoice.TaxRate, invoice.ShippingAmount.Decimal())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	now := time.Now().UTC()
	invoice.Lines = lines
	invoice.Subtotal = totals.Subtotal
	invoice.TaxAmount = totals.TaxAmount
	invoice.DiscountAmount = totals.DiscountAmount
	invoice.Total = totals.Total
	invoice.AmountDue = accounting.AmountDue(totals.Total, invoice.AmountPaid)
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = requestingUserID

	if err := s.documentRepo.ReplaceInvoiceLines(ctx, *invoice); err != nil {
		logger.Error("Failed to replace invoice lines", slog.String("error", err.Error()), slog.String("document_id", invoiceID))
		return nil, fmt.Errorf("failed to replace invoice lines: %w", err)
	}

	logger.Info("Invoice lines replaced", slog.String("document_id", invoiceID), slog.Int("line_count", len(lines)))
	return invoice, nil
}

func (s *documentService) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, requestingUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.documentRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !validTransition(invoiceTransitions, invoice.Status, status) {
		return nil, fmt.Errorf("%w: invoice %s -> %s", ErrInvalidTransition, invoice.Status, status)
	}

	// Sending an invoice hands it to the payment-driven status machine: the
	// stored status becomes whatever the amounts and due date imply.
	if status == domain.InvoiceSent {
		status = accounting.ResolveInvoiceStatus(status, invoice.Total, invoice.AmountPaid, invoice.DueDate, time.Now().UTC())
	}

	now := time.Now().UTC()
	invoice.Status = status
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = requestingUserID

	if err := s.documentRepo.UpdateInvoiceStatus(ctx, invoiceID, status, requestingUserID, now); err != nil {
		logger.Error("Failed to update invoice status", slog.String("error", err.Error()), slog.String("document_id", invoiceID))
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	logger.Info("Invoice status updated", slog.String("document_id", invoiceID), slog.String("status", string(status)))
	return invoice, nil
}

// --- Sales orders ---

func (s *documentService) CreateSalesOrder(ctx context.Context, req dto.CreateSalesOrderRequest, creatorUserID string) (*domain.SalesOrder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	documentID := uuid.NewString()

	lines, err := buildLines(documentID, req.Lines)
	if err != nil {
		return nil, err
	}
	header, err := buildHeader(documentID, req.CreateDocumentRequest, lines, req.ShippingAmount, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	order := domain.SalesOrder{
		DocumentHeader: header,
		Status:         domain.OrderDraft,
		Lines:          lines,
	}

	saved, err := s.documentRepo.SaveSalesOrder(ctx, order)
	if err != nil {
		logger.Error("Failed to save sales order", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to save sales order: %w", err)
	}

	logger.Info("Sales order created successfully", slog.String("document_id", saved.DocumentID), slog.String("number", saved.Number))
	return saved, nil
}

func (s *documentService) GetSalesOrderByID(ctx context.Context, orderID string) (*domain.SalesOrder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	order, err := s.documentRepo.FindSalesOrderByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find sales order by ID", slog.String("error", err.Error()), slog.String("document_id", orderID))
		}
		return nil, err
	}
	return order, nil
}

func (s *documentService) ListSalesOrders(ctx context.Context, params dto.ListParams) ([]domain.SalesOrder, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	orders, nextToken, err := s.documentRepo.ListSalesOrders(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list sales orders", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to list sales orders: %w", err)
	}
	return orders, nextToken, nil
}

func (s *documentService) UpdateSalesOrderStatus(ctx context.Context, orderID string, status domain.SalesOrderStatus, requestingUserID string) (*domain.SalesOrder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	order, err := s.documentRepo.FindSalesOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !validTransition(orderTransitions, order.Status, status) {
		return nil, fmt.Errorf("%w: sales order %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	now := time.Now().UTC()
	order.Status = status
	order.LastUpdatedAt = now
	order.LastUpdatedBy = requestingUserID

	if err := s.documentRepo.UpdateSalesOrderStatus(ctx, orderID, status, requestingUserID, now); err != nil {
		logger.Error("Failed to update sales order status", slog.String("error", err.Error()), slog.String("document_id", orderID))
		return nil, fmt.Errorf("failed to update sales order status: %w", err)
	}

	logger.Info("Sales order status updated", slog.String("document_id", orderID), slog.String("status", string(status)))
	return order, nil
}
