// Package benefit allocates tendered SNAP/WIC amounts across eligible
// cart lines. The allocation is a pure function of the lines'
// benefit-independent values, so re-running it with the same tender is
// idempotent by construction.
package benefit

import (
	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/money"
)

// Line is the projection of a cart line the apportioner needs. Total is
// the line's subtotal including deposits and excluding tax; a line can
// never be apportioned more than that.
type Line struct {
	Removed      bool
	SNAPEligible bool
	WICEligible  bool
	Total        decimal.Decimal
	// UnitValue is the final per-unit price including deposits, used to
	// derive the WIC value cap from the quantity cap.
	UnitValue decimal.Decimal
	Quantity  decimal.Decimal
	// WICMaxQty caps how many units of the line are WIC-eligible; zero
	// means uncapped.
	WICMaxQty decimal.Decimal
}

// Allocation is the per-line outcome, index-aligned with the input.
type Allocation struct {
	SNAPApplied decimal.Decimal `json:"snapApplied"`
	WICApplied  decimal.Decimal `json:"wicApplied"`
	// SubjectFraction is (SNAPApplied+WICApplied)/Total at scale 4,
	// the fraction of the line's value exempted from tax.
	SubjectFraction decimal.Decimal `json:"subjectFraction"`
}

// Result reports the allocation plus any tender that could not be
// covered by eligible goods. Uncovered tender signals a caller error
// the payment stage must handle; it is data, not a failure.
type Result struct {
	Allocations   []Allocation    `json:"allocations"`
	SNAPUncovered decimal.Decimal `json:"snapUncovered"`
	WICUncovered  decimal.Decimal `json:"wicUncovered"`
}

// Apportion distributes the tendered amounts across eligible,
// non-removed lines in cart order, SNAP first, then WIC. Each line
// absorbs at most its own total; WIC additionally honours the per-line
// quantity cap. Anything left over is returned as uncovered.
func Apportion(lines []Line, snapTendered, wicTendered decimal.Decimal) Result {
	res := Result{Allocations: make([]Allocation, len(lines))}

	snapLeft := money.ClampNonNegative(snapTendered)
	for i, ln := range lines {
		if snapLeft.IsZero() {
			break
		}
		if ln.Removed || !ln.SNAPEligible || !ln.Total.IsPositive() {
			continue
		}
		applied := decimal.Min(snapLeft, ln.Total)
		res.Allocations[i].SNAPApplied = applied
		snapLeft = snapLeft.Sub(applied)
	}
	res.SNAPUncovered = snapLeft

	wicLeft := money.ClampNonNegative(wicTendered)
	for i, ln := range lines {
		if wicLeft.IsZero() {
			break
		}
		if ln.Removed || !ln.WICEligible || !ln.Total.IsPositive() {
			continue
		}
		room := ln.Total.Sub(res.Allocations[i].SNAPApplied)
		if cap := wicValueCap(ln); cap.LessThan(room) {
			room = cap
		}
		if !room.IsPositive() {
			continue
		}
		applied := decimal.Min(wicLeft, room)
		res.Allocations[i].WICApplied = applied
		wicLeft = wicLeft.Sub(applied)
	}
	res.WICUncovered = wicLeft

	for i, ln := range lines {
		a := &res.Allocations[i]
		if ln.Total.IsPositive() {
			paid := a.SNAPApplied.Add(a.WICApplied)
			a.SubjectFraction = money.Round4(paid.Div(ln.Total))
		}
	}
	return res
}

// wicValueCap converts the line's WIC quantity cap into a value cap.
func wicValueCap(ln Line) decimal.Decimal {
	if !ln.WICMaxQty.IsPositive() {
		return ln.Total
	}
	qty := decimal.Min(ln.Quantity, ln.WICMaxQty)
	return money.Round2(ln.UnitValue.Mul(qty))
}
