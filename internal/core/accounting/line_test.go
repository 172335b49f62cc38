package accounting_test

import (
	"testing"

	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLineTotal(t *testing.T) {
	tests := []struct {
		name                                      string
		quantity, unitPrice, discountPct, taxRate string
		want                                      string
	}{
		{"plain quantity times price", "2", "50", "0", "0", "100.00"},
		{"line discount applied", "1", "100", "10", "0", "90.00"},
		{"line tax applied", "1", "100", "0", "8.5", "108.50"},
		{"discount before tax", "1", "100", "10", "10", "99.00"},
		{"fractional quantity", "2.5", "19.99", "0", "0", "49.98"},
		{"full discount", "3", "10", "100", "20", "0.00"},
		{"single terminal rounding", "3", "0.333", "0", "0", "1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.ComputeLineTotal(d(tt.quantity), d(tt.unitPrice), d(tt.discountPct), d(tt.taxRate))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

// Pins the rounding rule at the half-cent boundary: 1 x 10.005 resolves to
// 10.01, not 10.00.
func TestComputeLineTotalRoundingBoundary(t *testing.T) {
	got, err := accounting.ComputeLineTotal(d("1"), d("10.005"), d("0"), d("0"))
	require.NoError(t, err)
	assert.Equal(t, "10.01", got.String())
}

func TestComputeLineTotalDeterminism(t *testing.T) {
	first, err := accounting.ComputeLineTotal(d("7"), d("13.37"), d("12.5"), d("8.25"))
	require.NoError(t, err)
	second, err := accounting.ComputeLineTotal(d("7"), d("13.37"), d("12.5"), d("8.25"))
	require.NoError(t, err)
	assert.Equal(t, first.Cents(), second.Cents())
}

func TestComputeLineTotalRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name                                      string
		quantity, unitPrice, discountPct, taxRate string
	}{
		{"zero quantity", "0", "10", "0", "0"},
		{"negative quantity", "-1", "10", "0", "0"},
		{"negative price", "1", "-0.01", "0", "0"},
		{"discount above 100", "1", "10", "100.01", "0"},
		{"negative discount", "1", "10", "-5", "0"},
		{"tax above 100", "1", "10", "0", "101"},
		{"negative tax", "1", "10", "0", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := accounting.ComputeLineTotal(d(tt.quantity), d(tt.unitPrice), d(tt.discountPct), d(tt.taxRate))
			require.Error(t, err)
			assert.ErrorIs(t, err, accounting.ErrInvalidLineItem)
		})
	}
}
