package accounting

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// ResolveInvoiceStatus derives an invoice's lifecycle status from its total,
// amount paid, due date and current status.
//
// DRAFT and CANCELLED are absorbing: automatic derivation never overrides a
// manual draft or cancel decision. Otherwise the precedence is exactly
// paid > partial > overdue > sent, so a fully-paid invoice is never reported
// overdue even when evaluated after its due date.
func ResolveInvoiceStatus(current domain.InvoiceStatus, total, amountPaid domain.Money, dueDate time.Time, now time.Time) domain.InvoiceStatus {
	if current == domain.InvoiceDraft || current == domain.InvoiceCancelled {
		return current
	}

	amountDue := domain.MaxMoney(domain.ZeroMoney, total.Sub(amountPaid))

	switch {
	case amountDue.IsZero():
		return domain.InvoicePaid
	case amountPaid.IsPositive():
		return domain.InvoicePartial
	case dueDate.Before(now):
		return domain.InvoiceOverdue
	default:
		return domain.InvoiceSent
	}
}

// InvoicePayable reports whether an invoice in the given status can accept
// payments. Draft invoices have not been issued and cancelled ones never will
// be, so both refuse money.
func InvoicePayable(status domain.InvoiceStatus) bool {
	return status != domain.InvoiceDraft && status != domain.InvoiceCancelled
}

// AmountDue computes the open amount on an invoice, clamped at zero so
// overpayment never produces a negative due amount.
func AmountDue(total, amountPaid domain.Money) domain.Money {
	return domain.MaxMoney(domain.ZeroMoney, total.Sub(amountPaid))
}
