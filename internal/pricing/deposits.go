package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/money"
)

// DepositsFor computes the mandatory per-unit charge for a product (CRV,
// bottle deposit, bag fee, other) and its extension over the requested
// quantity. Deposits are added to the price, never discounted, and stay
// inside the taxable base.
func DepositsFor(p catalog.Product, qty decimal.Decimal) (perUnit, total decimal.Decimal) {
	perUnit = money.Round2(p.Deposits.PerUnit())
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	total = money.Round2(perUnit.Mul(qty))
	return perUnit, total
}
