package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromDecimalRounding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact two decimals", "10.01", "10.01"},
		{"half rounds up", "10.005", "10.01"},
		{"below half rounds down", "10.004", "10.00"},
		{"above half rounds up", "10.0051", "10.01"},
		{"negative half rounds away from zero", "-2.005", "-2.01"},
		{"zero", "0", "0.00"},
		{"many decimals", "16.1499999", "16.15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, domain.NewMoneyFromDecimal(d).String())
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := domain.MoneyFromCents(19000) // 190.00
	b := domain.MoneyFromCents(1615)  // 16.15

	assert.Equal(t, "206.15", a.Add(b).String())
	assert.Equal(t, "173.85", a.Sub(b).String())
	assert.Equal(t, "-16.15", b.Neg().String())
	assert.True(t, a.Sub(a).IsZero())
	assert.True(t, b.Neg().IsNegative())
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, a, domain.MaxMoney(a, b))
	assert.Equal(t, domain.ZeroMoney, domain.MaxMoney(domain.ZeroMoney, b.Neg()))
}

func TestMoneyDecimalRoundTrip(t *testing.T) {
	m := domain.NewMoneyFromDecimal(decimal.RequireFromString("123.45"))
	assert.Equal(t, int64(12345), m.Cents())
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("123.45")))
}

func TestMoneyJSON(t *testing.T) {
	m := domain.MoneyFromCents(20615)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"206.15"`, string(data))

	var back domain.Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equal(back))

	// Bare numbers are accepted too.
	require.NoError(t, json.Unmarshal([]byte(`10.005`), &back))
	assert.Equal(t, "10.01", back.String())

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &back))
}
