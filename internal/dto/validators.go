package dto

import (
	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterCustomValidators installs domain-specific binding validators on the
// given validator engine (gin's binding.Validator.Engine() in practice).
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("accounttype", validAccountType); err != nil {
		return err
	}
	return v.RegisterValidation("percent", validPercent)
}

func validAccountType(fl validator.FieldLevel) bool {
	switch domain.AccountType(fl.Field().String()) {
	case domain.Asset, domain.Liability, domain.Equity, domain.Revenue, domain.Expense:
		return true
	default:
		return false
	}
}

func validPercent(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}
