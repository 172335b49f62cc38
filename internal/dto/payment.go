package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest records money received. When InvoiceID is set the
// invoice's paid/due amounts and status are updated in the same unit of work.
// When DepositAccountID and ReceivableAccountID are both set, a balanced
// journal entry (debit deposit, credit receivable) is posted atomically with
// the payment.
type RecordPaymentRequest struct {
	InvoiceID           *string         `json:"invoiceID"`
	Amount              decimal.Decimal `json:"amount" binding:"required"`
	Date                time.Time       `json:"date" binding:"required"`
	Method              string          `json:"method" binding:"required"`
	Reference           string          `json:"reference"`
	DepositAccountID    *string         `json:"depositAccountID"`
	ReceivableAccountID *string         `json:"receivableAccountID"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID string    `json:"paymentID"`
	Number    string    `json:"number"`
	InvoiceID *string   `json:"invoiceID,omitempty"`
	Amount    string    `json:"amount"`
	Date      time.Time `json:"date"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
}

// RecordPaymentResponse returns the created payment together with the updated
// invoice, when the payment was applied to one.
type RecordPaymentResponse struct {
	Payment PaymentResponse  `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

// ListPaymentsResponse wraps a page of payments.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToPaymentResponse converts a domain.Payment to its response DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID: p.PaymentID,
		Number:    p.Number,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount.String(),
		Date:      p.Date,
		Method:    string(p.Method),
		Reference: p.Reference,
	}
}

// ToPaymentResponses converts a slice of domain payments.
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
