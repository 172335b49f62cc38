package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one side of a double entry as submitted by the
// caller. Exactly one of Debit/Credit must be non-zero; the service rejects
// anything else before touching storage.
type JournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

// CreateJournalEntryRequest posts a balanced journal entry.
type CreateJournalEntryRequest struct {
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID    string `json:"lineID"`
	AccountID string `json:"accountID"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
	Memo      string `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID          string                `json:"entryID"`
	Number           string                `json:"number"`
	EntryDate        time.Time             `json:"entryDate"`
	Description      string                `json:"description"`
	Status           string                `json:"status"`
	Amount           string                `json:"amount"`
	OriginalEntryID  *string               `json:"originalEntryID,omitempty"`
	ReversingEntryID *string               `json:"reversingEntryID,omitempty"`
	Lines            []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
}

// LedgerEntryResponse defines the data returned for one immutable ledger
// posting, including the running balance snapshot.
type LedgerEntryResponse struct {
	LedgerEntryID string    `json:"ledgerEntryID"`
	EntryID       string    `json:"entryID"`
	AccountID     string    `json:"accountID"`
	Debit         string    `json:"debit"`
	Credit        string    `json:"credit"`
	Balance       string    `json:"balance"`
	PostedAt      time.Time `json:"postedAt"`
}

// PostJournalEntryResponse returns the posted entry with the ledger entries
// created for it, in line order.
type PostJournalEntryResponse struct {
	Entry         JournalEntryResponse  `json:"entry"`
	LedgerEntries []LedgerEntryResponse `json:"ledgerEntries"`
}

// ListJournalEntriesResponse wraps a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ListLedgerEntriesResponse wraps a page of ledger postings for one account.
type ListLedgerEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain.JournalLine to its response DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:    l.LineID,
		AccountID: l.AccountID,
		Debit:     l.Debit.String(),
		Credit:    l.Credit.String(),
		Memo:      l.Memo,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:          e.EntryID,
		Number:           e.Number,
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		Status:           string(e.Status),
		Amount:           e.Amount.String(),
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToJournalLineResponse(&e.Lines[i])
		}
	}
	return resp
}

// ToJournalEntryResponses converts a slice of domain journal entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its response DTO.
func ToLedgerEntryResponse(le *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		LedgerEntryID: le.LedgerEntryID,
		EntryID:       le.EntryID,
		AccountID:     le.AccountID,
		Debit:         le.Debit.String(),
		Credit:        le.Credit.String(),
		Balance:       le.Balance.String(),
		PostedAt:      le.PostedAt,
	}
}

// ToLedgerEntryResponses converts a slice of domain ledger entries.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToLedgerEntryResponse(&entries[i])
	}
	return responses
}
