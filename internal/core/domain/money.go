package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount stored as integer cents. All derived
// amounts are rounded half away from zero at two decimal places exactly once,
// at the point they become Money; arithmetic on Money is exact.
type Money struct {
	cents int64
}

// ZeroMoney is the zero amount.
var ZeroMoney = Money{}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// NewMoneyFromDecimal converts an arbitrary-precision amount to Money,
// rounding half away from zero at two decimal places.
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{cents: d.Round(2).Shift(2).IntPart()}
}

// Cents returns the amount as integer cents.
func (m Money) Cents() int64 {
	return m.cents
}

// Decimal returns the amount as an exact two-decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

// String formats the amount with exactly two decimal places, e.g. "206.15".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

func (m Money) Neg() Money {
	return Money{cents: -m.cents}
}

func (m Money) Abs() Money {
	if m.cents < 0 {
		return Money{cents: -m.cents}
	}
	return m
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

func (m Money) IsNegative() bool {
	return m.cents < 0
}

func (m Money) IsPositive() bool {
	return m.cents > 0
}

func (m Money) Equal(other Money) bool {
	return m.cents == other.cents
}

func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

// Cmp returns -1, 0 or 1 comparing m against other.
func (m Money) Cmp(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// MarshalJSON renders the amount as a decimal string, e.g. "206.15".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid monetary amount %q: %w", s, err)
	}
	*m = NewMoneyFromDecimal(d)
	return nil
}
