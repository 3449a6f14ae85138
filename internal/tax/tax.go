// Package tax computes per-line sales tax. The defining rule is the
// rounding order: tax is rounded per unit before the quantity
// extension, so one customer buying N units pays exactly what N
// customers buying one unit each would pay.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/money"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Input describes one taxable line.
type Input struct {
	// BasePerUnit is the final per-unit price including deposits.
	BasePerUnit decimal.Decimal
	// RateSum is the combined tax-rate percentage (scale 3).
	RateSum  decimal.Decimal
	Quantity decimal.Decimal
	// SubjectFraction is the fraction of the line's value paid by an
	// exempt benefit (SNAP/WIC); tax is computed on the remainder.
	SubjectFraction decimal.Decimal
	// Exempt short-circuits to zero tax without evaluating rates.
	Exempt bool
}

// For computes (taxPerUnit, taxTotal) for a line. The per-unit amount
// is rounded to currency precision first; the total is that rounded
// amount multiplied by the quantity. Never `round2(base × qty × rate)`.
func For(in Input) (perUnit, total decimal.Decimal) {
	if in.Exempt {
		return decimal.Zero, decimal.Zero
	}
	fraction := in.SubjectFraction
	if fraction.IsNegative() {
		fraction = decimal.Zero
	}
	if fraction.GreaterThanOrEqual(one) {
		return decimal.Zero, decimal.Zero
	}
	rate := in.RateSum
	if !rate.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	qty := in.Quantity
	if qty.IsNegative() {
		qty = decimal.Zero
	}

	taxable := money.Round4(in.BasePerUnit.Mul(one.Sub(fraction)))
	perUnit = money.Round2(taxable.Mul(rate).Div(hundred))
	total = money.Round2(perUnit.Mul(qty))
	return perUnit, total
}
