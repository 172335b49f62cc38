package accounting

import "errors"

var (
	// ErrInvalidLineItem indicates a line item with a bad quantity, price or
	// percentage. No partial result is produced.
	ErrInvalidLineItem = errors.New("invalid line item")

	// ErrUnbalancedEntry indicates a journal entry whose debits and credits
	// differ by at least the balance tolerance.
	ErrUnbalancedEntry = errors.New("journal entry does not balance")

	// ErrInsufficientLines indicates a journal entry with fewer than two lines.
	ErrInsufficientLines = errors.New("journal entry must have at least two lines")

	// ErrUnknownAccountType indicates a posting against an account whose type
	// is missing or not a recognised accounting type.
	ErrUnknownAccountType = errors.New("unknown account type")
)
