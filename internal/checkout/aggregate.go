package checkout

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation means the aggregate totals failed to reconcile.
// The per-line contracts make this structurally impossible, so hitting
// it indicates a caller bypassed a component contract (for example by
// mutating a LineCalculation field directly). The aggregator refuses to
// publish an inconsistent total.
var ErrInvariantViolation = errors.New("transaction totals do not reconcile")

// Aggregate sums the already-rounded per-line fields of all non-removed
// lines into transaction totals. It performs no further rounding and
// fails fast when grandTotal != subtotal + tax + deposits.
func Aggregate(lines []LineCalculation) (TransactionCalculation, error) {
	tc := TransactionCalculation{Lines: lines}
	for _, l := range lines {
		if l.Removed {
			continue
		}
		tc.Subtotal = tc.Subtotal.Add(l.Subtotal)
		tc.DiscountTotal = tc.DiscountTotal.Add(l.DiscountTotal)
		tc.TaxTotal = tc.TaxTotal.Add(l.TaxTotal)
		tc.DepositTotal = tc.DepositTotal.Add(l.DepositTotal)
		tc.SavingsTotal = tc.SavingsTotal.Add(l.SavingsTotal)
		tc.GrandTotal = tc.GrandTotal.Add(l.LineTotal)
	}

	expected := tc.Subtotal.Add(tc.TaxTotal).Add(tc.DepositTotal)
	if !tc.GrandTotal.Equal(expected) {
		return TransactionCalculation{}, fmt.Errorf(
			"grand total %s != subtotal %s + tax %s + deposits %s: %w",
			tc.GrandTotal, tc.Subtotal, tc.TaxTotal, tc.DepositTotal, ErrInvariantViolation)
	}
	return tc, nil
}
