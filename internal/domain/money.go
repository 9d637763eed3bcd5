package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to the provider's minor unit,
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts a minor-unit amount back to major units.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// HasAtMostTwoDecimals reports whether amount survives a minor-unit round trip.
func HasAtMostTwoDecimals(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}
