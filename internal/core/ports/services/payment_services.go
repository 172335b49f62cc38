package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// PaymentReaderSvc defines read operations for payment data
type PaymentReaderSvc interface {
	// GetPaymentByID retrieves a specific payment by its ID.
	GetPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPayments retrieves a token-paginated list of payments.
	ListPayments(ctx context.Context, params dto.ListParams) ([]domain.Payment, *string, error)
}

// PaymentWriterSvc defines write operations for payment data
type PaymentWriterSvc interface {
	// RecordPayment persists a payment. When the payment references an
	// invoice, the invoice's paid amount, due amount and status are updated
	// atomically with the payment; when deposit and receivable accounts are
	// supplied a balanced journal entry is posted in the same transaction.
	// Returns the payment and the updated invoice (nil for standalone
	// payments).
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, creatorUserID string) (*domain.Payment, *domain.Invoice, error)
}

// PaymentSvcFacade combines all payment-related service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
