package repositories

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// PaymentReader defines read operations for payments.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment by its ID.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPayments retrieves a token-paginated page of payments, newest first.
	ListPayments(ctx context.Context, limit int, nextToken *string) ([]domain.Payment, *string, error)
}

// PaymentWriter defines write operations for payments.
type PaymentWriter interface {
	// SavePayment persists a payment in a single transaction, assigning its
	// document number. When invoice is non-nil that invoice is re-read under
	// a row lock and its paid amount, due amount and status are updated in
	// the same transaction. When entry is non-nil the journal entry (its
	// Lines carried inline) is posted, with ledger rows and account balance
	// updates, in the same transaction as well. Returns the stored payment
	// with its assigned number and the updated invoice (nil when the payment
	// is standalone).
	SavePayment(ctx context.Context, payment domain.Payment, invoice *domain.Invoice, entry *domain.JournalEntry) (*domain.Payment, *domain.Invoice, error)
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}

// PaymentRepositoryWithTx extends PaymentRepositoryFacade with transaction
// capabilities.
type PaymentRepositoryWithTx interface {
	PaymentRepositoryFacade
	TransactionManager
}
