// Package money provides monetary types and the rounding rules used by pricing.
package money

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Scales used across the pricing rules. Prices round to 2 decimal places,
// discount percentages to 4.
const (
	PriceScale   = 2
	PercentScale = 4
)

// New creates a Money value from a float.
// WARNING: Use FromString for precise values.
func New(f float64) Money {
	return decimal.NewFromFloat(f)
}

// FromString creates a Money value from a string.
// This is the preferred method for monetary values.
func FromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// Must creates a Money value from a string, panics on error.
// Use only for constants and tests.
func Must(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundPrice rounds to 2 decimal places, half up.
func RoundPrice(m Money) Money {
	return m.Round(PriceScale)
}

// RoundPercent rounds to 4 decimal places, half up.
func RoundPercent(m Money) Money {
	return m.Round(PercentScale)
}

// Hundred is used for percentage math.
var Hundred = decimal.NewFromInt(100)

// One is the multiplicative identity.
var One = decimal.NewFromInt(1)
