package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one document line as submitted by the caller. Line totals
// are always derived server-side, never accepted as input.
type LineItemRequest struct {
	Description     string          `json:"description" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	SortOrder       int             `json:"sortOrder"`
}

// CreateDocumentRequest holds the fields common to all document families.
type CreateDocumentRequest struct {
	CustomerID     string            `json:"customerID" binding:"required"`
	IssueDate      time.Time         `json:"issueDate" binding:"required"`
	Lines          []LineItemRequest `json:"lines" binding:"required,min=1,dive"`
	DiscountAmount decimal.Decimal   `json:"discountAmount"`
	TaxRate        decimal.Decimal   `json:"taxRate"`
	Notes          string            `json:"notes"`
}

// CreateQuoteRequest creates a quote.
type CreateQuoteRequest struct {
	CreateDocumentRequest
	ExpiryDate *time.Time `json:"expiryDate"`
}

// CreateInvoiceRequest creates an invoice.
type CreateInvoiceRequest struct {
	CreateDocumentRequest
	DueDate time.Time `json:"dueDate" binding:"required"`
}

// CreateSalesOrderRequest creates a sales order.
type CreateSalesOrderRequest struct {
	CreateDocumentRequest
	ShippingAmount decimal.Decimal `json:"shippingAmount"`
}

// UpdateStatusRequest carries a manual lifecycle transition for any document
// family; the target status is validated against the family's state machine.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateInvoiceLinesRequest replaces an invoice's lines; totals and status are
// recomputed server-side.
type UpdateInvoiceLinesRequest struct {
	Lines []LineItemRequest `json:"lines" binding:"required,min=1,dive"`
}

// LineItemResponse is one document line as returned to the caller.
type LineItemResponse struct {
	LineItemID      string          `json:"lineItemID"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	LineTotal       string          `json:"lineTotal"`
	SortOrder       int             `json:"sortOrder"`
}

// DocumentHeaderResponse is the monetary header shared by all families.
type DocumentHeaderResponse struct {
	DocumentID     string          `json:"documentID"`
	Number         string          `json:"number"`
	CustomerID     string          `json:"customerID"`
	IssueDate      time.Time       `json:"issueDate"`
	Subtotal       string          `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	TaxAmount      string          `json:"taxAmount"`
	DiscountAmount string          `json:"discountAmount"`
	ShippingAmount string          `json:"shippingAmount"`
	Total          string          `json:"total"`
	Notes          string          `json:"notes,omitempty"`
}

// QuoteResponse defines the data returned for a quote.
type QuoteResponse struct {
	DocumentHeaderResponse
	Status     string             `json:"status"`
	ExpiryDate *time.Time         `json:"expiryDate,omitempty"`
	Lines      []LineItemResponse `json:"lines,omitempty"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	DocumentHeaderResponse
	Status     string             `json:"status"`
	DueDate    time.Time          `json:"dueDate"`
	AmountPaid string             `json:"amountPaid"`
	AmountDue  string             `json:"amountDue"`
	Lines      []LineItemResponse `json:"lines,omitempty"`
}

// SalesOrderResponse defines the data returned for a sales order.
type SalesOrderResponse struct {
	DocumentHeaderResponse
	Status string             `json:"status"`
	Lines  []LineItemResponse `json:"lines,omitempty"`
}

// ListInvoicesResponse wraps a page of invoices with the pagination token.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListQuotesResponse wraps a page of quotes.
type ListQuotesResponse struct {
	Quotes    []QuoteResponse `json:"quotes"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListSalesOrdersResponse wraps a page of sales orders.
type ListSalesOrdersResponse struct {
	SalesOrders []SalesOrderResponse `json:"salesOrders"`
	NextToken   *string              `json:"nextToken,omitempty"`
}

// ListParams carries token pagination parameters shared by list endpoints.
type ListParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

func toLineItemResponses(lines []domain.LineItem) []LineItemResponse {
	if len(lines) == 0 {
		return nil
	}
	responses := make([]LineItemResponse, len(lines))
	for i, l := range lines {
		responses[i] = LineItemResponse{
			LineItemID:      l.LineItemID,
			Description:     l.Description,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxRate:         l.TaxRate,
			LineTotal:       l.LineTotal.String(),
			SortOrder:       l.SortOrder,
		}
	}
	return responses
}

func toDocumentHeaderResponse(h domain.DocumentHeader) DocumentHeaderResponse {
	return DocumentHeaderResponse{
		DocumentID:     h.DocumentID,
		Number:         h.Number,
		CustomerID:     h.CustomerID,
		IssueDate:      h.IssueDate,
		Subtotal:       h.Subtotal.String(),
		TaxRate:        h.TaxRate,
		TaxAmount:      h.TaxAmount.String(),
		DiscountAmount: h.DiscountAmount.String(),
		ShippingAmount: h.ShippingAmount.String(),
		Total:          h.Total.String(),
		Notes:          h.Notes,
	}
}

// ToQuoteResponse converts a domain.Quote to its response DTO.
func ToQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		DocumentHeaderResponse: toDocumentHeaderResponse(q.DocumentHeader),
		Status:                 string(q.Status),
		ExpiryDate:             q.ExpiryDate,
		Lines:                  toLineItemResponses(q.Lines),
	}
}

// ToInvoiceResponse converts a domain.Invoice to its response DTO.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		DocumentHeaderResponse: toDocumentHeaderResponse(inv.DocumentHeader),
		Status:                 string(inv.Status),
		DueDate:                inv.DueDate,
		AmountPaid:             inv.AmountPaid.String(),
		AmountDue:              inv.AmountDue.String(),
		Lines:                  toLineItemResponses(inv.Lines),
	}
}

// ToSalesOrderResponse converts a domain.SalesOrder to its response DTO.
func ToSalesOrderResponse(so *domain.SalesOrder) SalesOrderResponse {
	return SalesOrderResponse{
		DocumentHeaderResponse: toDocumentHeaderResponse(so.DocumentHeader),
		Status:                 string(so.Status),
		Lines:                  toLineItemResponses(so.Lines),
	}
}
