package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/benefit"
	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/money"
	"github.com/kirakosyanara/gropos/internal/pricing"
	"github.com/kirakosyanara/gropos/internal/tax"
)

// PriceLine runs the full per-line pipeline: price resolution, deposit
// charges, discount stacking with floor protection, then tax with no
// benefit apportionment. The result is a fresh immutable value.
func PriceLine(p catalog.Product, ctx pricing.Context, in pricing.DiscountInputs) LineCalculation {
	qty := ctx.Quantity
	if qty.IsNegative() {
		qty = decimal.Zero
	}

	unitPrice, source := pricing.Resolve(p, ctx)
	depositPerUnit, depositTotal := pricing.DepositsFor(p, qty)
	discounts := pricing.ApplyDiscounts(unitPrice, source, p, qty, in)

	line := LineCalculation{
		ProductID:      p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Quantity:       qty,
		UnitPrice:      unitPrice,
		PriceSource:    source,
		DepositPerUnit: depositPerUnit,
		DepositTotal:   depositTotal,
		Discounts:      discounts,
		DiscountTotal:  money.Round2(discounts.TotalPerUnit.Mul(qty)),
		FinalUnitPrice: discounts.FinalUnitPrice.Add(depositPerUnit),
		TaxRateSum:     p.TaxRateSum(),
		TaxExempt:      p.TaxExempt,
		Subtotal:       money.Round2(discounts.FinalUnitPrice.Mul(qty)),
		SavingsTotal:   money.Round2(discounts.SavingsPerUnit.Mul(qty)),
		SNAPEligible:   p.SNAPEligible,
		WICEligible:    p.WICEligible,
		WICMaxQty:      p.WICMaxQty,
	}
	return withTax(line, decimal.Zero, decimal.Zero, decimal.Zero)
}

// ReapplyBenefit allocates SNAP/WIC tender across the lines and
// re-derives tax for every line from its new subject fraction. The
// previous tax is discarded, never summed with the recomputed value, so
// calling this twice with the same tender yields identical results.
func ReapplyBenefit(lines []LineCalculation, snapTendered, wicTendered decimal.Decimal) ([]LineCalculation, benefit.Result) {
	values := make([]benefit.Line, len(lines))
	for i, l := range lines {
		values[i] = benefit.Line{
			Removed:      l.Removed,
			SNAPEligible: l.SNAPEligible,
			WICEligible:  l.WICEligible,
			Total:        l.EligibleValue(),
			UnitValue:    l.FinalUnitPrice,
			Quantity:     l.Quantity,
			WICMaxQty:    l.WICMaxQty,
		}
	}
	res := benefit.Apportion(values, snapTendered, wicTendered)

	next := make([]LineCalculation, len(lines))
	for i, l := range lines {
		a := res.Allocations[i]
		next[i] = withTax(l, a.SNAPApplied, a.WICApplied, a.SubjectFraction)
	}
	return next, res
}

// withTax returns a copy of the line with the benefit fields set and
// the tax re-derived from them.
func withTax(l LineCalculation, snapApplied, wicApplied, fraction decimal.Decimal) LineCalculation {
	l.SNAPApplied = snapApplied
	l.WICApplied = wicApplied
	l.SubjectFraction = fraction
	l.TaxPerUnit, l.TaxTotal = tax.For(tax.Input{
		BasePerUnit:     l.FinalUnitPrice,
		RateSum:         l.TaxRateSum,
		Quantity:        l.Quantity,
		SubjectFraction: fraction,
		Exempt:          l.TaxExempt,
	})
	l.LineTotal = l.Subtotal.Add(l.DepositTotal).Add(l.TaxTotal)
	return l
}
