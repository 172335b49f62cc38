package accounting_test

import (
	"testing"

	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(quantity, unitPrice, discountPct, taxRate string) domain.LineItem {
	return domain.LineItem{
		Quantity:        d(quantity),
		UnitPrice:       d(unitPrice),
		DiscountPercent: d(discountPct),
		TaxRate:         d(taxRate),
	}
}

func TestComputeDocumentTotals(t *testing.T) {
	lines := []domain.LineItem{
		line("2", "50", "0", "0"),
		line("1", "100", "10", "0"),
	}

	totals, err := accounting.ComputeDocumentTotals(lines, d("0"), d("8.5"), d("0"))
	require.NoError(t, err)

	assert.Equal(t, "190.00", totals.Subtotal.String())
	assert.Equal(t, "16.15", totals.TaxAmount.String())
	assert.Equal(t, "0.00", totals.DiscountAmount.String())
	assert.Equal(t, "206.15", totals.Total.String())
}

// Line tax is excluded from the subtotal; it only affects the line's own
// displayed total.
func TestComputeDocumentTotalsExcludesLineTax(t *testing.T) {
	withTax, err := accounting.ComputeDocumentTotals([]domain.LineItem{line("1", "100", "0", "20")}, d("0"), d("0"), d("0"))
	require.NoError(t, err)
	withoutTax, err := accounting.ComputeDocumentTotals([]domain.LineItem{line("1", "100", "0", "0")}, d("0"), d("0"), d("0"))
	require.NoError(t, err)

	assert.Equal(t, withoutTax.Subtotal.String(), withTax.Subtotal.String())
	assert.Equal(t, "100.00", withTax.Total.String())
}

func TestComputeDocumentTotalsDiscountAndShipping(t *testing.T) {
	lines := []domain.LineItem{line("4", "25", "0", "0")} // 100.00

	totals, err := accounting.ComputeDocumentTotals(lines, d("20"), d("10"), d("5.50"))
	require.NoError(t, err)

	assert.Equal(t, "100.00", totals.Subtotal.String())
	assert.Equal(t, "20.00", totals.DiscountAmount.String())
	// Tax applies to the discounted base: (100 - 20) * 10% = 8.00.
	assert.Equal(t, "8.00", totals.TaxAmount.String())
	// 80 + 8 + 5.50
	assert.Equal(t, "93.50", totals.Total.String())
}

// A document discount bigger than the subtotal is not rejected; the total may
// go negative (credit-memo semantics). This pins the policy decision.
func TestComputeDocumentTotalsDiscountExceedsSubtotal(t *testing.T) {
	lines := []domain.LineItem{line("1", "50", "0", "0")}

	totals, err := accounting.ComputeDocumentTotals(lines, d("80"), d("0"), d("0"))
	require.NoError(t, err)

	assert.Equal(t, "50.00", totals.Subtotal.String())
	assert.Equal(t, "-30.00", totals.Total.String())
	assert.True(t, totals.Total.IsNegative())
}

func TestComputeDocumentTotalsEmptyLines(t *testing.T) {
	totals, err := accounting.ComputeDocumentTotals(nil, d("0"), d("0"), d("0"))
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeDocumentTotalsRejectsBadLine(t *testing.T) {
	_, err := accounting.ComputeDocumentTotals([]domain.LineItem{line("0", "10", "0", "0")}, d("0"), d("0"), d("0"))
	assert.ErrorIs(t, err, accounting.ErrInvalidLineItem)
}

// Splitting a line set into two groups and totalling each part separately
// agrees with totalling the whole set, to within one rounding unit per part.
func TestComputeDocumentTotalsAdditivity(t *testing.T) {
	all := []domain.LineItem{
		line("2", "19.99", "5", "0"),
		line("1", "7.33", "0", "0"),
		line("3", "1.115", "12.5", "0"),
		line("10", "0.07", "0", "0"),
	}

	for split := 1; split < len(all); split++ {
		whole, err := accounting.ComputeDocumentTotals(all, d("0"), d("0"), d("0"))
		require.NoError(t, err)
		first, err := accounting.ComputeDocumentTotals(all[:split], d("0"), d("0"), d("0"))
		require.NoError(t, err)
		second, err := accounting.ComputeDocumentTotals(all[split:], d("0"), d("0"), d("0"))
		require.NoError(t, err)

		diff := whole.Subtotal.Sub(first.Subtotal.Add(second.Subtotal)).Abs()
		assert.LessOrEqual(t, diff.Cents(), int64(1), "split at %d", split)
	}
}
