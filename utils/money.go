package utils

import "github.com/shopspring/decimal"

// FormatMinor renders an amount in minor currency units (pence, cents) as a
// two-decimal string, e.g. 2299 -> "22.99".
func FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
