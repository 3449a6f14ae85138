// Package money centralises the decimal conventions used by the
// calculation engine: scale 2 for currency, scale 3 for quantities and
// tax-rate percentages, scale 4 for intermediate products before the
// final round. Binary floats never cross a package boundary.
package money

import "github.com/shopspring/decimal"

// Scales used across the engine.
const (
	CurrencyScale     = 2
	QuantityScale     = 3
	IntermediateScale = 4
)

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// Round2 rounds to currency precision, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyScale)
}

// Round3 rounds to quantity/rate precision.
func Round3(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// Round4 rounds an intermediate product before a later final round.
func Round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(IntermediateScale)
}

// Cents builds a currency amount from minor units.
func Cents(n int64) decimal.Decimal {
	return decimal.New(n, -CurrencyScale)
}

// Sum adds the provided amounts without any rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// MustParse converts a decimal literal, panicking on malformed input.
// Intended for constants and test fixtures only.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
