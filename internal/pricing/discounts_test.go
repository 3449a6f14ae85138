package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/money"
)

func floorProduct() catalog.Product {
	return catalog.Product{
		RetailPrice: money.MustParse("10.00"),
		FloorPrice:  money.MustParse("5.00"),
	}
}

func TestStackingAgainstOriginalPrice(t *testing.T) {
	p := floorProduct()
	in := DiscountInputs{
		PromotionPerUnit:   money.MustParse("0.50"),
		CouponPerUnit:      money.MustParse("0.25"),
		CustomerPerUnit:    money.MustParse("0.10"),
		Manual:             &ManualDiscount{Kind: ManualPercent, Value: decimal.NewFromInt(10)},
		TransactionPerUnit: money.MustParse("0.15"),
	}
	r := ApplyDiscounts(money.MustParse("10.00"), SourceRetail, p, decimal.NewFromInt(1), in)

	// Manual 10% is taken from the original 10.00, not the running
	// remainder after the other discounts.
	if !r.ManualPerUnit.Equal(money.MustParse("1.00")) {
		t.Fatalf("expected manual 1.00, got %s", r.ManualPerUnit)
	}
	if !r.TotalPerUnit.Equal(money.MustParse("2.00")) {
		t.Fatalf("expected total discount 2.00, got %s", r.TotalPerUnit)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("8.00")) {
		t.Fatalf("expected final 8.00, got %s", r.FinalUnitPrice)
	}
	if !r.SavingsPerUnit.Equal(money.MustParse("2.00")) {
		t.Fatalf("expected savings 2.00, got %s", r.SavingsPerUnit)
	}
	if r.FloorOutcome != FloorNotTriggered {
		t.Fatalf("floor should not trigger at 8.00, got %s", r.FloorOutcome)
	}
}

func TestFloorEnforced(t *testing.T) {
	p := floorProduct()
	in := DiscountInputs{Manual: &ManualDiscount{Kind: ManualAmountPerUnit, Value: money.MustParse("8.00")}}
	r := ApplyDiscounts(money.MustParse("10.00"), SourceRetail, p, decimal.NewFromInt(1), in)
	if r.FloorOutcome != FloorEnforced {
		t.Fatalf("expected enforced floor, got %s", r.FloorOutcome)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("5.00")) {
		t.Fatalf("expected clamp to 5.00, got %s", r.FinalUnitPrice)
	}
	if !r.SavingsPerUnit.Equal(money.MustParse("5.00")) {
		t.Fatalf("savings reflect the clamped price, got %s", r.SavingsPerUnit)
	}
}

func TestFloorExemptSaleBelowFloor(t *testing.T) {
	p := floorProduct()
	r := ApplyDiscounts(money.MustParse("4.00"), SourceSale, p, decimal.NewFromInt(1), DiscountInputs{})
	if r.FloorOutcome != FloorExemptSale {
		t.Fatalf("expected sale exemption, got %s", r.FloorOutcome)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("4.00")) {
		t.Fatalf("sale price below floor must stand, got %s", r.FinalUnitPrice)
	}
}

func TestFloorAppliesToDiscountedSale(t *testing.T) {
	// A sale priced above the floor gets no exemption when discounts
	// push it under.
	p := floorProduct()
	in := DiscountInputs{CouponPerUnit: money.MustParse("2.00")}
	r := ApplyDiscounts(money.MustParse("6.00"), SourceSale, p, decimal.NewFromInt(1), in)
	if r.FloorOutcome != FloorEnforced {
		t.Fatalf("expected enforced floor, got %s", r.FloorOutcome)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("5.00")) {
		t.Fatalf("expected clamp to 5.00, got %s", r.FinalUnitPrice)
	}
}

func TestFloorExemptMarkdown(t *testing.T) {
	p := floorProduct()
	in := DiscountInputs{
		Manual:             &ManualDiscount{Kind: ManualAmountPerUnit, Value: money.MustParse("8.00")},
		MarkdownBelowFloor: true,
	}
	r := ApplyDiscounts(money.MustParse("10.00"), SourceRetail, p, decimal.NewFromInt(1), in)
	if r.FloorOutcome != FloorExemptMarkdown {
		t.Fatalf("expected markdown exemption, got %s", r.FloorOutcome)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("2.00")) {
		t.Fatalf("expected 2.00, got %s", r.FinalUnitPrice)
	}
}

func TestFloorExemptManagerOverride(t *testing.T) {
	p := floorProduct()
	in := DiscountInputs{
		Manual:        &ManualDiscount{Kind: ManualAmountPerUnit, Value: money.MustParse("8.00")},
		FloorOverride: &FloorOverride{ApprovedBy: "mgr-7"},
	}
	r := ApplyDiscounts(money.MustParse("10.00"), SourceRetail, p, decimal.NewFromInt(1), in)
	if r.FloorOutcome != FloorExemptOverride {
		t.Fatalf("expected override exemption, got %s", r.FloorOutcome)
	}
	if r.FloorApprover != "mgr-7" {
		t.Fatalf("approver must be retained, got %q", r.FloorApprover)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("2.00")) {
		t.Fatalf("expected 2.00, got %s", r.FinalUnitPrice)
	}
}

func TestOverrideWithoutApproverStillClamps(t *testing.T) {
	p := floorProduct()
	in := DiscountInputs{
		Manual:        &ManualDiscount{Kind: ManualAmountPerUnit, Value: money.MustParse("8.00")},
		FloorOverride: &FloorOverride{},
	}
	r := ApplyDiscounts(money.MustParse("10.00"), SourceRetail, p, decimal.NewFromInt(1), in)
	if r.FloorOutcome != FloorEnforced {
		t.Fatalf("override without an approver must not exempt, got %s", r.FloorOutcome)
	}
}

func TestNegativeDiscountsIgnored(t *testing.T) {
	p := floorProduct()
	in := DiscountInputs{
		PromotionPerUnit: money.MustParse("-1.00"),
		CouponPerUnit:    money.MustParse("-0.50"),
		Manual:           &ManualDiscount{Kind: ManualAmountPerUnit, Value: money.MustParse("-2.00")},
	}
	r := ApplyDiscounts(money.MustParse("10.00"), SourceRetail, p, decimal.NewFromInt(1), in)
	if !r.TotalPerUnit.IsZero() {
		t.Fatalf("negative discounts must contribute nothing, got %s", r.TotalPerUnit)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("10.00")) {
		t.Fatalf("expected unchanged price, got %s", r.FinalUnitPrice)
	}
}

func TestSavingsNeverNegative(t *testing.T) {
	p := floorProduct()
	// Prompted price above retail: savings clamp at zero.
	r := ApplyDiscounts(money.MustParse("12.00"), SourcePrompted, p, decimal.NewFromInt(1), DiscountInputs{})
	if !r.SavingsPerUnit.IsZero() {
		t.Fatalf("savings must clamp at zero, got %s", r.SavingsPerUnit)
	}
}

func TestManualSetTotal(t *testing.T) {
	p := catalog.Product{RetailPrice: money.MustParse("3.00")}
	in := DiscountInputs{Manual: &ManualDiscount{Kind: ManualSetTotal, Value: money.MustParse("6.00")}}
	r := ApplyDiscounts(money.MustParse("3.00"), SourceRetail, p, decimal.NewFromInt(3), in)
	if !r.ManualPerUnit.Equal(money.MustParse("1.00")) {
		t.Fatalf("set-total 6.00 over qty 3 should discount 1.00 per unit, got %s", r.ManualPerUnit)
	}
	if !r.FinalUnitPrice.Equal(money.MustParse("2.00")) {
		t.Fatalf("expected 2.00 per unit, got %s", r.FinalUnitPrice)
	}
}

func TestManualPercentOverHundredIgnored(t *testing.T) {
	p := floorProduct()
	in := DiscountInputs{Manual: &ManualDiscount{Kind: ManualPercent, Value: decimal.NewFromInt(120)}}
	r := ApplyDiscounts(money.MustParse("10.00"), SourceRetail, p, decimal.NewFromInt(1), in)
	if !r.ManualPerUnit.IsZero() {
		t.Fatalf("percent above 100 is malformed, got %s", r.ManualPerUnit)
	}
}

func TestDiscountsNeverPushBelowZero(t *testing.T) {
	p := catalog.Product{RetailPrice: money.MustParse("2.00")}
	in := DiscountInputs{CouponPerUnit: money.MustParse("5.00")}
	r := ApplyDiscounts(money.MustParse("2.00"), SourceRetail, p, decimal.NewFromInt(1), in)
	if r.FinalUnitPrice.IsNegative() {
		t.Fatalf("final price must not go negative, got %s", r.FinalUnitPrice)
	}
}

func TestDepositsFor(t *testing.T) {
	p := catalog.Product{Deposits: catalog.DepositSchedule{
		CRV:           money.MustParse("0.05"),
		BottleDeposit: money.MustParse("0.10"),
		BagFee:        money.MustParse("-0.01"),
	}}
	perUnit, total := DepositsFor(p, decimal.NewFromInt(6))
	if !perUnit.Equal(money.MustParse("0.15")) {
		t.Fatalf("negative components must be ignored, got %s per unit", perUnit)
	}
	if !total.Equal(money.MustParse("0.90")) {
		t.Fatalf("expected 0.90 total, got %s", total)
	}

	if _, total := DepositsFor(p, decimal.NewFromInt(-1)); !total.IsZero() {
		t.Fatalf("negative quantity must charge nothing, got %s", total)
	}
}
