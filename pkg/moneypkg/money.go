// Package moneypkg provides fixed-point money helpers shared by all layers.
//
// All balance math is performed on decimal values at full precision;
// rounding to the currency scale happens only at output boundaries
// (share totals, settlement amounts, wire rendering).
package moneypkg

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates that the amount string cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// Parse converts a decimal string into an exact decimal value.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	return d, nil
}

// Round rounds the value half-up at the given currency scale.
func Round(d decimal.Decimal, scale int32) decimal.Decimal {
	return d.Round(scale)
}

// String renders the value as a fixed-point decimal string at the given
// scale, e.g. "-2300.00" for scale 2. Wire output must never use floats.
func String(d decimal.Decimal, scale int32) string {
	return d.StringFixed(scale)
}

// Epsilon returns one unit at the given scale (0.01 for scale 2).
func Epsilon(scale int32) decimal.Decimal {
	return decimal.New(1, -scale)
}

// HalfEpsilon returns half a unit at the given scale. It is the
// tolerance used by debt-presence checks so that a one-cent imbalance
// still counts as a debt.
func HalfEpsilon(scale int32) decimal.Decimal {
	return decimal.New(5, -scale-1)
}
