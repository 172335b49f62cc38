package accounting

import (
	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentTotals aggregates a document's monetary header fields.
type DocumentTotals struct {
	Subtotal       domain.Money
	TaxAmount      domain.Money
	DiscountAmount domain.Money
	Total          domain.Money
}

// ComputeDocumentTotals aggregates a document's lines plus document-level
// discount, tax rate and shipping.
//
// The subtotal sums each line's raw economics, quantity * unitPrice reduced by
// the line discount percent; line-level tax is excluded, it only affects the
// line's own displayed total. The document discount is an absolute amount
// subtracted before tax; the discounted base may go negative (credit-memo
// semantics, deliberately not clamped). Tax applies to the discounted base and
// shipping is added last. The four outputs are each rounded once, at the end.
func ComputeDocumentTotals(lines []domain.LineItem, documentDiscount, documentTaxRate, shipping decimal.Decimal) (DocumentTotals, error) {
	subtotal := decimal.Zero
	for _, line := range lines {
		if err := validateLineInputs(line.Quantity, line.UnitPrice, line.DiscountPercent, line.TaxRate); err != nil {
			return DocumentTotals{}, err
		}
		lineNet := line.Quantity.Mul(line.UnitPrice).
			Mul(decimal.NewFromInt(1).Sub(line.DiscountPercent.Div(oneHundred)))
		subtotal = subtotal.Add(lineNet)
	}

	afterDiscount := subtotal.Sub(documentDiscount)
	taxAmount := afterDiscount.Mul(documentTaxRate.Div(oneHundred))
	total := afterDiscount.Add(taxAmount).Add(shipping)

	return DocumentTotals{
		Subtotal:       domain.NewMoneyFromDecimal(subtotal),
		TaxAmount:      domain.NewMoneyFromDecimal(taxAmount),
		DiscountAmount: domain.NewMoneyFromDecimal(documentDiscount),
		Total:          domain.NewMoneyFromDecimal(total),
	}, nil
}
