package domain

import "time"

// PaymentMethod is how a payment was received.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCard     PaymentMethod = "CARD"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodCheque   PaymentMethod = "CHEQUE"
	MethodOther    PaymentMethod = "OTHER"
)

// Payment is money received, optionally applied to one invoice. Recording a
// payment against an invoice updates that invoice's paid/due amounts and
// status as a single logical operation.
type Payment struct {
	PaymentID string        `json:"paymentID"` // Primary Key (UUID)
	Number    string        `json:"number"`    // PAY family sequence number
	InvoiceID *string       `json:"invoiceID"` // Nullable FK -> invoices.document_id
	Amount    Money         `json:"amount"`    // > 0
	Date      time.Time     `json:"date"`
	Method    PaymentMethod `json:"method"`
	Reference string        `json:"reference"` // Free-form external reference
	AuditFields
}
