package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places money is kept at.
const CentPlaces = 2

// ParseAmount parses a user or storage supplied amount string.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", s, err)
	}
	return d, nil
}

// IsCents reports whether d has at most two decimal places.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(CentPlaces))
}

// RoundCents rounds half to even at two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CentPlaces)
}

// FormatAmount renders d with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(CentPlaces)
}
