package accounting

import (
	"fmt"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// balanceTolerance is the fixed tolerance absorbing rounding differences when
// comparing debit and credit sums: |sum(debit) - sum(credit)| must be < 0.01.
var balanceTolerance = domain.MoneyFromCents(1)

// ValidateBalanced checks that a set of journal lines forms a valid
// double-entry event: at least two lines, exactly one of debit/credit non-zero
// (and positive) per line, and debits equal to credits within the fixed
// tolerance. An entry failing this check must be rejected before any ledger
// mutation; no partial posting is ever persisted.
func ValidateBalanced(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: got %d", ErrInsufficientLines, len(lines))
	}

	debits := domain.ZeroMoney
	credits := domain.ZeroMoney
	for i, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", ErrUnbalancedEntry, i)
		}
		hasDebit := line.Debit.IsPositive()
		hasCredit := line.Credit.IsPositive()
		if hasDebit == hasCredit {
			return fmt.Errorf("%w: line %d must have exactly one of debit or credit", ErrUnbalancedEntry, i)
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}

	if diff := debits.Sub(credits).Abs(); diff.Cmp(balanceTolerance) >= 0 {
		return fmt.Errorf("%w: debits %s, credits %s", ErrUnbalancedEntry, debits, credits)
	}
	return nil
}

// PostLine computes one account's new running balance from a journal line,
// according to the account's normal balance side: ASSET and EXPENSE accounts
// increase with debits, LIABILITY, EQUITY and REVENUE accounts increase with
// credits. The convention is keyed strictly off the account's immutable type,
// never inferred from the data.
func PostLine(currentBalance, debit, credit domain.Money, accountType domain.AccountType) (domain.Money, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return currentBalance.Add(debit).Sub(credit), nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return currentBalance.Add(credit).Sub(debit), nil
	default:
		return domain.ZeroMoney, fmt.Errorf("%w: %q", ErrUnknownAccountType, accountType)
	}
}

// EntryAmount computes the economic value of a balanced entry: the total of
// its debit side.
func EntryAmount(lines []domain.JournalLine) domain.Money {
	total := domain.ZeroMoney
	for _, line := range lines {
		total = total.Add(line.Debit)
	}
	return total
}
