package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DocumentReader defines read operations for quotes, invoices and sales
// orders.
type DocumentReader interface {
	// FindQuoteByID retrieves a quote with its lines.
	FindQuoteByID(ctx context.Context, documentID string) (*domain.Quote, error)

	// FindInvoiceByID retrieves an invoice with its lines.
	FindInvoiceByID(ctx context.Context, documentID string) (*domain.Invoice, error)

	// FindSalesOrderByID retrieves a sales order with its lines.
	FindSalesOrderByID(ctx context.Context, documentID string) (*domain.SalesOrder, error)

	// ListQuotes retrieves a token-paginated page of quote headers.
	ListQuotes(ctx context.Context, limit int, nextToken *string) ([]domain.Quote, *string, error)

	// ListInvoices retrieves a token-paginated page of invoice headers.
	ListInvoices(ctx context.Context, limit int, nextToken *string) ([]domain.Invoice, *string, error)

	// ListSalesOrders retrieves a token-paginated page of sales order headers.
	ListSalesOrders(ctx context.Context, limit int, nextToken *string) ([]domain.SalesOrder, *string, error)
}

// DocumentWriter defines write operations for documents. Save methods assign
// the document number from the family sequence inside the same transaction
// that inserts the header, so concurrent callers can never mint a duplicate.
type DocumentWriter interface {
	// SaveQuote persists a quote and its lines, returning the copy with the
	// assigned number.
	SaveQuote(ctx context.Context, quote domain.Quote) (*domain.Quote, error)

	// SaveInvoice persists an invoice and its lines, returning the copy with
	// the assigned number.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)

	// SaveSalesOrder persists a sales order and its lines, returning the copy
	// with the assigned number.
	SaveSalesOrder(ctx context.Context, order domain.SalesOrder) (*domain.SalesOrder, error)

	// ReplaceInvoiceLines atomically replaces an invoice's lines and header
	// totals with the recomputed values.
	ReplaceInvoiceLines(ctx context.Context, invoice domain.Invoice) error

	// UpdateQuoteStatus sets a quote's lifecycle status.
	UpdateQuoteStatus(ctx context.Context, documentID string, status domain.QuoteStatus, userID string, now time.Time) error

	// UpdateInvoiceStatus sets an invoice's status (manual transitions such as
	// marking sent or cancelling).
	UpdateInvoiceStatus(ctx context.Context, documentID string, status domain.InvoiceStatus, userID string, now time.Time) error

	// UpdateSalesOrderStatus sets a sales order's lifecycle status.
	UpdateSalesOrderStatus(ctx context.Context, documentID string, status domain.SalesOrderStatus, userID string, now time.Time) error
}

// DocumentTransactionSupport defines document operations used inside a
// composed transaction (payment recording).
type DocumentTransactionSupport interface {
	// FindInvoiceByIDForUpdate retrieves and locks an invoice header within
	// the given transaction.
	FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Invoice, error)

	// ApplyInvoicePaymentInTx updates an invoice's paid/due amounts and status
	// within the given transaction.
	ApplyInvoicePaymentInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error
}

// DocumentRepositoryFacade combines all document-related repository
// interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
	DocumentTransactionSupport
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction
// capabilities.
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
