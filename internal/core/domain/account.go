package domain

// AccountType defines the fundamental accounting type of an account.
// It determines the account's normal balance side and never changes after
// creation; historical running balances depend on it.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a node in the chart of accounts.
type Account struct {
	AccountID       string      `json:"accountID"`       // Primary Key (UUID)
	Code            string      `json:"code"`            // Unique, sortable code, e.g. "1110"
	Name            string      `json:"name"`            // User-defined name
	AccountType     AccountType `json:"accountType"`     // ASSET, LIABILITY, etc. Immutable.
	ParentAccountID string      `json:"parentAccountID"` // Nullable FK -> accounts.account_id (self-referencing tree)
	Description     string      `json:"description"`     // Nullable user description
	IsActive        bool        `json:"isActive"`        // Soft-deactivation flag; accounts with postings are never deleted
	Balance         Money       `json:"balance"`         // Persisted current balance
	AuditFields
}
