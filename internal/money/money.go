// Package money holds the two-fraction-digit decimal rules shared by every
// amount in the system.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
)

// Max is the largest amount a NUMERIC(10,2) column holds.
var Max = decimal.RequireFromString("99999999.99")

// Parse reads a positive amount with at most two fraction digits.
func Parse(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, apperr.Validation(field, "is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.Validation(field, "is not a valid amount")
	}

	if err := Validate(field, d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// Validate checks an amount already held as a decimal.
func Validate(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return apperr.Validation(field, "must be greater than 0")
	}

	if !d.Equal(d.Truncate(2)) {
		return apperr.Validation(field, "must have at most two decimal places")
	}

	if d.GreaterThan(Max) {
		return apperr.Validation(field, "is too large")
	}

	return nil
}

func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}

	return total
}
