package accounting

import (
	"fmt"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// validateLineInputs checks the preconditions shared by line and document
// total calculations.
func validateLineInputs(quantity, unitPrice, discountPercent, taxRate decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: quantity must be greater than zero, got %s", ErrInvalidLineItem, quantity)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative, got %s", ErrInvalidLineItem, unitPrice)
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: discount percent must be between 0 and 100, got %s", ErrInvalidLineItem, discountPercent)
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: tax rate must be between 0 and 100, got %s", ErrInvalidLineItem, taxRate)
	}
	return nil
}

// ComputeLineTotal computes a single line's total from quantity, unit price,
// line discount percent and line tax percent. The formula is evaluated in
// this exact order:
//
//	gross = quantity * unitPrice
//	afterDiscount = gross * (1 - discountPercent/100)
//	result = afterDiscount * (1 + taxRate/100)
//
// with a single rounding step at the end. The function is pure.
func ComputeLineTotal(quantity, unitPrice, discountPercent, taxRate decimal.Decimal) (domain.Money, error) {
	if err := validateLineInputs(quantity, unitPrice, discountPercent, taxRate); err != nil {
		return domain.ZeroMoney, err
	}

	gross := quantity.Mul(unitPrice)
	afterDiscount := gross.Mul(decimal.NewFromInt(1).Sub(discountPercent.Div(oneHundred)))
	result := afterDiscount.Mul(decimal.NewFromInt(1).Add(taxRate.Div(oneHundred)))

	return domain.NewMoneyFromDecimal(result), nil
}
