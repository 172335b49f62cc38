package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// QuoteSvc defines operations for quotes
type QuoteSvc interface {
	// CreateQuote computes line and document totals and persists a new quote.
	CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, creatorUserID string) (*domain.Quote, error)

	// GetQuoteByID retrieves a specific quote by its ID.
	GetQuoteByID(ctx context.Context, quoteID string) (*domain.Quote, error)

	// ListQuotes retrieves a token-paginated list of quotes.
	ListQuotes(ctx context.Context, params dto.ListParams) ([]domain.Quote, *string, error)

	// UpdateQuoteStatus transitions a quote to a new status.
	UpdateQuoteStatus(ctx context.Context, quoteID string, status domain.QuoteStatus, requestingUserID string) (*domain.Quote, error)
}

// InvoiceSvc defines operations for invoices
type InvoiceSvc interface {
	// CreateInvoice computes line and document totals and persists a new invoice.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error)

	// GetInvoiceByID retrieves a specific invoice by its ID.
	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a token-paginated list of invoices.
	ListInvoices(ctx context.Context, params dto.ListParams) ([]domain.Invoice, *string, error)

	// ReplaceInvoiceLines replaces an invoice's line items and recomputes its
	// totals and derived status. Only draft invoices may be edited.
	ReplaceInvoiceLines(ctx context.Context, invoiceID string, req dto.UpdateInvoiceLinesRequest, requestingUserID string) (*domain.Invoice, error)

	// UpdateInvoiceStatus applies a manual status transition (send, cancel)
	// and re-derives the payment-driven statuses where applicable.
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, requestingUserID string) (*domain.Invoice, error)
}

// SalesOrderSvc defines operations for sales orders
type SalesOrderSvc interface {
	// CreateSalesOrder computes line and document totals and persists a new sales order.
	CreateSalesOrder(ctx context.Context, req dto.CreateSalesOrderRequest, creatorUserID string) (*domain.SalesOrder, error)

	// GetSalesOrderByID retrieves a specific sales order by its ID.
	GetSalesOrderByID(ctx context.Context, orderID string) (*domain.SalesOrder, error)

	// ListSalesOrders retrieves a token-paginated list of sales orders.
	ListSalesOrders(ctx context.Context, params dto.ListParams) ([]domain.SalesOrder, *string, error)

	// UpdateSalesOrderStatus transitions a sales order to a new status.
	UpdateSalesOrderStatus(ctx context.Context, orderID string, status domain.SalesOrderStatus, requestingUserID string) (*domain.SalesOrder, error)
}

// DocumentSvcFacade combines all document-related service interfaces
type DocumentSvcFacade interface {
	QuoteSvc
	InvoiceSvc
	SalesOrderSvc
}
