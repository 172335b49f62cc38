package domain

import "time"

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	// JournalDraft entries are editable and contribute nothing to balances.
	JournalDraft JournalStatus = "DRAFT"
	// JournalPosted entries are immutable and included in account balances.
	JournalPosted JournalStatus = "POSTED"
	// JournalVoid entries have been reversed by a linked reversing entry.
	JournalVoid JournalStatus = "VOID"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. Once posted it is immutable; voiding is done with a
// reversing entry, never by mutating the original.
type JournalEntry struct {
	EntryID     string        `json:"entryID"` // Primary Key (UUID)
	Number      string        `json:"number"`  // JE family sequence number
	EntryDate   time.Time     `json:"entryDate"`
	Description string        `json:"description"`
	Status      JournalStatus `json:"status"`
	Amount      Money         `json:"amount"` // Total of the debit side; the economic value of the event
	// Reversal linkage: a reversing entry points at the original it undoes,
	// and a voided original points at the entry that reversed it.
	OriginalEntryID  *string       `json:"originalEntryID"`
	ReversingEntryID *string       `json:"reversingEntryID"`
	Lines            []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is one side of a double entry. Exactly one of Debit/Credit is
// non-zero per line.
type JournalLine struct {
	LineID    string `json:"lineID"`  // Primary Key (UUID)
	EntryID   string `json:"entryID"` // FK -> journal_entries.entry_id
	AccountID string `json:"accountID"`
	Debit     Money  `json:"debit"`
	Credit    Money  `json:"credit"`
	Memo      string `json:"memo"`
	SortOrder int    `json:"sortOrder"`
}

// LedgerEntry is an immutable, append-only posting against one account,
// carrying the account's running balance after this posting. Created only
// when a journal entry posts; corrections are new offsetting entries.
type LedgerEntry struct {
	LedgerEntryID string    `json:"ledgerEntryID"` // Primary Key (UUID)
	EntryID       string    `json:"entryID"`       // FK -> journal_entries.entry_id
	LineID        string    `json:"lineID"`        // FK -> journal_lines.line_id
	AccountID     string    `json:"accountID"`
	Debit         Money     `json:"debit"`
	Credit        Money     `json:"credit"`
	Balance       Money     `json:"balance"` // Running balance immediately after this posting
	PostedAt      time.Time `json:"postedAt"`
	CreatedBy     string    `json:"createdBy"`
}
