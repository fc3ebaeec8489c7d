// Package money converts between display amounts and the minor units the
// payment provider works in.
package money

import "github.com/shopspring/decimal"

func ToMinor(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

func FromMinor(minor int64) float64 {
	return decimal.New(minor, -2).InexactFloat64()
}
