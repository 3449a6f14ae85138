package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/money"
)

// ManualKind selects how a manual line discount is expressed.
type ManualKind string

const (
	ManualPercent       ManualKind = "percent"
	ManualAmountPerUnit ManualKind = "amount_per_unit"
	ManualSetTotal      ManualKind = "set_total"
)

// ManualDiscount is a cashier-entered line discount.
type ManualDiscount struct {
	Kind  ManualKind      `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// FloorOverride records an already-approved manager override that lets
// the line price fall below the floor. The approval workflow itself is
// external; only the approver identity is retained for audit.
type FloorOverride struct {
	ApprovedBy string `json:"approvedBy"`
}

// DiscountInputs gathers every discount source for one line. Per-unit
// amounts arrive pre-computed from their evaluators (promotion engine,
// coupon scan, customer profile, transaction allocation); the engine
// only stacks them.
type DiscountInputs struct {
	PromotionPerUnit   decimal.Decimal `json:"promotionPerUnit"`
	CouponPerUnit      decimal.Decimal `json:"couponPerUnit"`
	CustomerPerUnit    decimal.Decimal `json:"customerPerUnit"`
	Manual             *ManualDiscount `json:"manual,omitempty"`
	TransactionPerUnit decimal.Decimal `json:"transactionPerUnit"`

	// MarkdownBelowFloor marks the line with a markdown that explicitly
	// allows sub-floor pricing.
	MarkdownBelowFloor bool           `json:"markdownBelowFloor"`
	FloorOverride      *FloorOverride `json:"floorOverride,omitempty"`
}

// FloorOutcome reports what the floor-price check decided.
type FloorOutcome string

const (
	// FloorNotTriggered means the discounted price never fell below the floor.
	FloorNotTriggered FloorOutcome = "not_triggered"
	// FloorEnforced means the price was clamped up to the floor.
	FloorEnforced FloorOutcome = "enforced"
	// FloorExemptSale means the resolved sale price was already below
	// the floor (corporate pre-approved), so the clamp was skipped.
	FloorExemptSale FloorOutcome = "exempt_sale_below_floor"
	// FloorExemptMarkdown means a markdown explicitly allowed sub-floor pricing.
	FloorExemptMarkdown FloorOutcome = "exempt_markdown"
	// FloorExemptOverride means a manager override authorised sub-floor pricing.
	FloorExemptOverride FloorOutcome = "exempt_manager_override"
)

// DiscountResult is the stacked outcome for one line, all amounts per
// unit and already rounded to currency precision.
type DiscountResult struct {
	PromotionPerUnit   decimal.Decimal `json:"promotionPerUnit"`
	CouponPerUnit      decimal.Decimal `json:"couponPerUnit"`
	CustomerPerUnit    decimal.Decimal `json:"customerPerUnit"`
	ManualPerUnit      decimal.Decimal `json:"manualPerUnit"`
	TransactionPerUnit decimal.Decimal `json:"transactionPerUnit"`
	TotalPerUnit       decimal.Decimal `json:"totalPerUnit"`

	// FinalUnitPrice is the post-discount price excluding deposits.
	FinalUnitPrice decimal.Decimal `json:"finalUnitPrice"`
	FloorOutcome   FloorOutcome    `json:"floorOutcome"`
	FloorApprover  string          `json:"floorApprover,omitempty"`
	SavingsPerUnit decimal.Decimal `json:"savingsPerUnit"`
}

// ApplyDiscounts stacks every discount source in fixed precedence, each
// computed against the original unit price and summed, then enforces
// the floor price unless one of the documented exceptions applies. A
// negative configured amount is malformed and contributes nothing; the
// clamp is reported in the result, never as an error.
func ApplyDiscounts(unitPrice decimal.Decimal, source Source, p catalog.Product, qty decimal.Decimal, in DiscountInputs) DiscountResult {
	r := DiscountResult{
		PromotionPerUnit:   sanitize(in.PromotionPerUnit),
		CouponPerUnit:      sanitize(in.CouponPerUnit),
		CustomerPerUnit:    sanitize(in.CustomerPerUnit),
		ManualPerUnit:      manualPerUnit(unitPrice, qty, in.Manual),
		TransactionPerUnit: sanitize(in.TransactionPerUnit),
	}
	r.TotalPerUnit = money.Sum(
		r.PromotionPerUnit,
		r.CouponPerUnit,
		r.CustomerPerUnit,
		r.ManualPerUnit,
		r.TransactionPerUnit,
	)

	final := money.ClampNonNegative(unitPrice.Sub(r.TotalPerUnit))
	floor := money.ClampNonNegative(p.FloorPrice)

	r.FloorOutcome = FloorNotTriggered
	if final.LessThan(floor) {
		switch {
		case source == SourceSale && unitPrice.LessThan(floor):
			r.FloorOutcome = FloorExemptSale
		case in.MarkdownBelowFloor:
			r.FloorOutcome = FloorExemptMarkdown
		case in.FloorOverride != nil && in.FloorOverride.ApprovedBy != "":
			r.FloorOutcome = FloorExemptOverride
			r.FloorApprover = in.FloorOverride.ApprovedBy
		default:
			final = floor
			r.FloorOutcome = FloorEnforced
		}
	}

	r.FinalUnitPrice = money.Round2(final)
	r.SavingsPerUnit = money.Round2(money.ClampNonNegative(p.RetailPrice.Sub(r.FinalUnitPrice)))
	return r
}

// sanitize treats a negative configured discount as inapplicable and
// normalises the rest to currency precision.
func sanitize(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return money.Round2(d)
}

func manualPerUnit(unitPrice, qty decimal.Decimal, m *ManualDiscount) decimal.Decimal {
	if m == nil || m.Value.IsNegative() {
		return decimal.Zero
	}
	switch m.Kind {
	case ManualPercent:
		if m.Value.GreaterThan(hundred) {
			return decimal.Zero
		}
		return money.Round2(money.Round4(unitPrice.Mul(m.Value).Div(hundred)))
	case ManualAmountPerUnit:
		return money.Round2(m.Value)
	case ManualSetTotal:
		if !qty.IsPositive() {
			return decimal.Zero
		}
		target := money.Round4(m.Value.Div(qty))
		return money.Round2(money.ClampNonNegative(unitPrice.Sub(target)))
	default:
		return decimal.Zero
	}
}
