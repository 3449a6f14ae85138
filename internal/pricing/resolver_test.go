package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/money"
)

// Mon-Fri day mask, bit 0 is Sunday.
const weekdayMask = 0b0111110

var (
	wednesdayNoon  = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	wednesdayNight = time.Date(2024, 3, 6, 20, 0, 0, 0, time.UTC)
	saturdayNoon   = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
)

func testProduct() catalog.Product {
	nine, seventeen := 9*60, 17*60
	return catalog.Product{
		SKU:         "SODA-12",
		RetailPrice: money.MustParse("5.99"),
		Cost:        money.MustParse("3.00"),
		Sales: []catalog.Sale{{
			Price:       money.MustParse("4.49"),
			Active:      true,
			DayMask:     weekdayMask,
			StartMinute: &nine,
			EndMinute:   &seventeen,
		}},
		BulkTiers: []catalog.BulkTier{
			{MinQty: decimal.NewFromInt(10), Kind: catalog.TierUnitPrice, Value: money.MustParse("4.99")},
			{MinQty: decimal.NewFromInt(20), Kind: catalog.TierPercentOff, Value: decimal.NewFromInt(20)},
		},
	}
}

func TestResolveHierarchyOrder(t *testing.T) {
	p := testProduct()
	prompted := money.MustParse("2.50")
	customer := &CustomerPrice{Kind: CustomerFixed, Value: money.MustParse("3.25")}

	ctx := Context{
		PromptedPrice: &prompted,
		CustomerPrice: customer,
		Quantity:      decimal.NewFromInt(10),
		Now:           wednesdayNoon,
	}
	price, source := Resolve(p, ctx)
	if source != SourcePrompted || !price.Equal(money.MustParse("2.50")) {
		t.Fatalf("expected prompted 2.50, got %s from %s", price, source)
	}

	ctx.PromptedPrice = nil
	price, source = Resolve(p, ctx)
	if source != SourceCustomer || !price.Equal(money.MustParse("3.25")) {
		t.Fatalf("expected customer 3.25, got %s from %s", price, source)
	}

	ctx.CustomerPrice = nil
	price, source = Resolve(p, ctx)
	if source != SourceSale || !price.Equal(money.MustParse("4.49")) {
		t.Fatalf("expected sale 4.49, got %s from %s", price, source)
	}

	ctx.Now = saturdayNoon
	price, source = Resolve(p, ctx)
	if source != SourceBulk || !price.Equal(money.MustParse("4.99")) {
		t.Fatalf("expected bulk 4.99, got %s from %s", price, source)
	}

	ctx.Quantity = decimal.NewFromInt(1)
	price, source = Resolve(p, ctx)
	if source != SourceRetail || !price.Equal(money.MustParse("5.99")) {
		t.Fatalf("expected retail 5.99, got %s from %s", price, source)
	}
}

func TestResolveZeroPromptedIgnored(t *testing.T) {
	p := testProduct()
	zero := decimal.Zero
	price, source := Resolve(p, Context{PromptedPrice: &zero, Quantity: decimal.NewFromInt(1), Now: saturdayNoon})
	if source != SourceRetail || !price.Equal(money.MustParse("5.99")) {
		t.Fatalf("expected fallthrough to retail, got %s from %s", price, source)
	}
}

func TestCustomerPriceKinds(t *testing.T) {
	p := testProduct()
	cases := []struct {
		name string
		cp   CustomerPrice
		want string
	}{
		{"percent off", CustomerPrice{Kind: CustomerPercentOff, Value: decimal.NewFromInt(10)}, "5.39"},
		{"amount off", CustomerPrice{Kind: CustomerAmountOff, Value: money.MustParse("1.00")}, "4.99"},
		{"cost plus", CustomerPrice{Kind: CustomerCostPlus, Value: decimal.NewFromInt(50)}, "4.50"},
	}
	for _, tc := range cases {
		price, source := Resolve(p, Context{CustomerPrice: &tc.cp, Quantity: decimal.NewFromInt(1), Now: saturdayNoon})
		if source != SourceCustomer || !price.Equal(money.MustParse(tc.want)) {
			t.Fatalf("%s: expected %s, got %s from %s", tc.name, tc.want, price, source)
		}
	}
}

func TestMalformedCustomerPriceFallsThrough(t *testing.T) {
	p := testProduct()
	cases := []CustomerPrice{
		{Kind: CustomerPercentOff, Value: decimal.NewFromInt(150)},
		{Kind: CustomerAmountOff, Value: money.MustParse("9.99")},
		{Kind: "raffle", Value: decimal.NewFromInt(1)},
	}
	for _, cp := range cases {
		cp := cp
		price, source := Resolve(p, Context{CustomerPrice: &cp, Quantity: decimal.NewFromInt(1), Now: saturdayNoon})
		if source != SourceRetail || !price.Equal(money.MustParse("5.99")) {
			t.Fatalf("kind %s: expected fallthrough to retail, got %s from %s", cp.Kind, price, source)
		}
	}
}

func TestCustomerPriceValidityWindow(t *testing.T) {
	p := testProduct()
	from := wednesdayNoon.Add(24 * time.Hour)
	cp := &CustomerPrice{Kind: CustomerFixed, Value: money.MustParse("3.25"), ValidFrom: &from}
	_, source := Resolve(p, Context{CustomerPrice: cp, Quantity: decimal.NewFromInt(1), Now: wednesdayNoon})
	if source == SourceCustomer {
		t.Fatalf("customer price applied before its validity window")
	}

	to := wednesdayNoon.Add(-24 * time.Hour)
	cp = &CustomerPrice{Kind: CustomerFixed, Value: money.MustParse("3.25"), ValidTo: &to}
	_, source = Resolve(p, Context{CustomerPrice: cp, Quantity: decimal.NewFromInt(1), Now: wednesdayNoon})
	if source == SourceCustomer {
		t.Fatalf("customer price applied after its validity window")
	}
}

func TestSaleWindowBoundaries(t *testing.T) {
	p := testProduct()
	ctx := Context{Quantity: decimal.NewFromInt(1)}

	ctx.Now = wednesdayNoon
	if _, source := Resolve(p, ctx); source != SourceSale {
		t.Fatalf("Wednesday 12:00 should hit the sale window, got %s", source)
	}
	ctx.Now = saturdayNoon
	if _, source := Resolve(p, ctx); source == SourceSale {
		t.Fatalf("Saturday 12:00 should miss a Mon-Fri sale")
	}
	ctx.Now = wednesdayNight
	if _, source := Resolve(p, ctx); source == SourceSale {
		t.Fatalf("Wednesday 20:00 should miss a 09:00-17:00 sale")
	}
}

func TestSaleOvernightWindow(t *testing.T) {
	start, end := 22*60, 2*60
	p := testProduct()
	p.Sales = []catalog.Sale{{
		Price:       money.MustParse("4.49"),
		Active:      true,
		DayMask:     0b1111111,
		StartMinute: &start,
		EndMinute:   &end,
	}}

	ctx := Context{Quantity: decimal.NewFromInt(1), Now: time.Date(2024, 3, 6, 23, 0, 0, 0, time.UTC)}
	if _, source := Resolve(p, ctx); source != SourceSale {
		t.Fatalf("23:00 should be inside a 22:00-02:00 window, got %s", source)
	}
	ctx.Now = time.Date(2024, 3, 6, 1, 30, 0, 0, time.UTC)
	if _, source := Resolve(p, ctx); source != SourceSale {
		t.Fatalf("01:30 should be inside a 22:00-02:00 window, got %s", source)
	}
	ctx.Now = wednesdayNoon
	if _, source := Resolve(p, ctx); source == SourceSale {
		t.Fatalf("12:00 should be outside a 22:00-02:00 window")
	}
}

func TestSaleInactiveAndZeroMaskNeverMatch(t *testing.T) {
	p := testProduct()
	p.Sales[0].Active = false
	ctx := Context{Quantity: decimal.NewFromInt(1), Now: wednesdayNoon}
	if _, source := Resolve(p, ctx); source == SourceSale {
		t.Fatalf("inactive sale must not apply")
	}

	p = testProduct()
	p.Sales[0].DayMask = 0
	if _, source := Resolve(p, ctx); source == SourceSale {
		t.Fatalf("zero day mask must never match")
	}
}

func TestSaleDateRange(t *testing.T) {
	p := testProduct()
	ended := wednesdayNoon.Add(-48 * time.Hour)
	p.Sales[0].EndDate = &ended
	ctx := Context{Quantity: decimal.NewFromInt(1), Now: wednesdayNoon}
	if _, source := Resolve(p, ctx); source == SourceSale {
		t.Fatalf("expired sale must not apply")
	}
}

func TestLowestValidSaleWins(t *testing.T) {
	p := testProduct()
	p.Sales = append(p.Sales, catalog.Sale{
		Price:   money.MustParse("3.99"),
		Active:  true,
		DayMask: 0b1111111,
	})
	price, source := Resolve(p, Context{Quantity: decimal.NewFromInt(1), Now: wednesdayNoon})
	if source != SourceSale || !price.Equal(money.MustParse("3.99")) {
		t.Fatalf("expected lowest sale 3.99, got %s from %s", price, source)
	}
}

func TestBulkHighestQualifyingTier(t *testing.T) {
	p := testProduct()
	ctx := Context{Quantity: decimal.NewFromInt(25), Now: saturdayNoon}
	price, source := Resolve(p, ctx)
	// 20% off 5.99 = 4.792, rounded to 4.79.
	if source != SourceBulk || !price.Equal(money.MustParse("4.79")) {
		t.Fatalf("expected 20-unit tier at 4.79, got %s from %s", price, source)
	}
}

func TestBulkBoundedTier(t *testing.T) {
	p := testProduct()
	max := decimal.NewFromInt(15)
	p.BulkTiers = []catalog.BulkTier{{
		MinQty: decimal.NewFromInt(10),
		MaxQty: &max,
		Kind:   catalog.TierUnitPrice,
		Value:  money.MustParse("4.99"),
	}}
	ctx := Context{Quantity: decimal.NewFromInt(20), Now: saturdayNoon}
	if _, source := Resolve(p, ctx); source == SourceBulk {
		t.Fatalf("quantity above MaxQty must not qualify")
	}
	ctx.Quantity = decimal.NewFromInt(12)
	if _, source := Resolve(p, ctx); source != SourceBulk {
		t.Fatalf("quantity inside the band should qualify")
	}
}

func TestMalformedBulkTierFallsThrough(t *testing.T) {
	p := testProduct()
	p.BulkTiers = []catalog.BulkTier{{
		MinQty: decimal.NewFromInt(10),
		Kind:   catalog.TierAmountOff,
		Value:  money.MustParse("9.99"),
	}}
	price, source := Resolve(p, Context{Quantity: decimal.NewFromInt(10), Now: saturdayNoon})
	if source != SourceRetail || !price.Equal(money.MustParse("5.99")) {
		t.Fatalf("non-positive tier price must fall through to retail, got %s from %s", price, source)
	}
}
