package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentFamily identifies a numbered document family. Each family has its
// own number sequence and status enum.
type DocumentFamily string

const (
	FamilyQuote      DocumentFamily = "QUOTE"
	FamilyInvoice    DocumentFamily = "INVOICE"
	FamilySalesOrder DocumentFamily = "SALES_ORDER"
	FamilyPayment    DocumentFamily = "PAYMENT"
	FamilyJournal    DocumentFamily = "JOURNAL"
)

// NumberPrefix returns the default number prefix for the family, e.g. "INV"
// for invoices, so numbers read INV-000001.
func (f DocumentFamily) NumberPrefix() string {
	switch f {
	case FamilyQuote:
		return "QT"
	case FamilyInvoice:
		return "INV"
	case FamilySalesOrder:
		return "SO"
	case FamilyPayment:
		return "PAY"
	case FamilyJournal:
		return "JE"
	default:
		return "DOC"
	}
}

// QuoteStatus is the lifecycle status of a quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "DRAFT"
	QuoteSent     QuoteStatus = "SENT"
	QuoteAccepted QuoteStatus = "ACCEPTED"
	QuoteDeclined QuoteStatus = "DECLINED"
	QuoteExpired  QuoteStatus = "EXPIRED"
)

// InvoiceStatus is the lifecycle status of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoicePartial   InvoiceStatus = "PARTIAL"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// SalesOrderStatus is the lifecycle status of a sales order.
type SalesOrderStatus string

const (
	OrderDraft     SalesOrderStatus = "DRAFT"
	OrderConfirmed SalesOrderStatus = "CONFIRMED"
	OrderFulfilled SalesOrderStatus = "FULFILLED"
	OrderCancelled SalesOrderStatus = "CANCELLED"
)

// LineItem is one row of a money-bearing document. It is owned exclusively by
// its parent document and destroyed with it.
type LineItem struct {
	LineItemID      string          `json:"lineItemID"` // Primary Key (UUID)
	DocumentID      string          `json:"documentID"` // FK -> parent document
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`        // > 0
	UnitPrice       decimal.Decimal `json:"unitPrice"`       // >= 0
	DiscountPercent decimal.Decimal `json:"discountPercent"` // 0..100
	TaxRate         decimal.Decimal `json:"taxRate"`         // 0..100
	LineTotal       Money           `json:"lineTotal"`       // Derived; never an authoritative input
	SortOrder       int             `json:"sortOrder"`
}

// DocumentHeader holds the monetary header fields shared by quotes, invoices
// and sales orders. total == subtotal + taxAmount + shippingAmount -
// discountAmount at all times; the fields are recomputed whenever lines
// change, never hand-edited.
type DocumentHeader struct {
	DocumentID     string          `json:"documentID"` // Primary Key (UUID)
	Number         string          `json:"number"`     // Unique within the family, immutable once assigned
	CustomerID     string          `json:"customerID"` // Reference only; customer records live outside this service
	IssueDate      time.Time       `json:"issueDate"`
	Subtotal       Money           `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"taxRate"` // Document-level tax percent
	TaxAmount      Money           `json:"taxAmount"`
	DiscountAmount Money           `json:"discountAmount"` // Absolute document-level discount
	ShippingAmount Money           `json:"shippingAmount"`
	Total          Money           `json:"total"`
	Notes          string          `json:"notes"`
	AuditFields
}

// Quote is a priced offer to a customer.
type Quote struct {
	DocumentHeader
	Status     QuoteStatus `json:"status"`
	ExpiryDate *time.Time  `json:"expiryDate"`
	Lines      []LineItem  `json:"lines"`
}

// Invoice is a demand for payment. AmountDue == max(0, Total - AmountPaid).
type Invoice struct {
	DocumentHeader
	Status     InvoiceStatus `json:"status"`
	DueDate    time.Time     `json:"dueDate"`
	AmountPaid Money         `json:"amountPaid"`
	AmountDue  Money         `json:"amountDue"`
	Lines      []LineItem    `json:"lines"`
}

// SalesOrder is a confirmed order awaiting fulfilment.
type SalesOrder struct {
	DocumentHeader
	Status SalesOrderStatus `json:"status"`
	Lines  []LineItem       `json:"lines"`
}
