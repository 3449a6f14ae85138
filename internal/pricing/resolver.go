// Package pricing derives the effective unit price for a cart line:
// base-price resolution across the five ranked sources, mandatory
// deposit charges, and discount stacking with floor-price protection.
// Everything here is a pure function over immutable inputs.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/money"
)

// Source identifies which tier of the price hierarchy produced the
// resolved unit price. Retained on every line for audit.
type Source string

const (
	SourcePrompted Source = "prompted"
	SourceCustomer Source = "customer"
	SourceSale     Source = "sale"
	SourceBulk     Source = "bulk"
	SourceRetail   Source = "retail"
)

// CustomerPriceKind selects how a customer-specific price is derived.
type CustomerPriceKind string

const (
	CustomerFixed      CustomerPriceKind = "fixed"
	CustomerPercentOff CustomerPriceKind = "percent_off"
	CustomerAmountOff  CustomerPriceKind = "amount_off"
	CustomerCostPlus   CustomerPriceKind = "cost_plus"
)

// CustomerPrice is a customer-specific override resolved by the caller
// for the product or its category.
type CustomerPrice struct {
	Kind      CustomerPriceKind `json:"kind"`
	Value     decimal.Decimal   `json:"value"`
	ValidFrom *time.Time        `json:"validFrom,omitempty"`
	ValidTo   *time.Time        `json:"validTo,omitempty"`
}

// Context carries the non-catalog inputs needed to resolve one line.
type Context struct {
	// PromptedPrice is used verbatim when present and strictly
	// positive; zero or absent means "not provided".
	PromptedPrice *decimal.Decimal `json:"promptedPrice,omitempty"`
	CustomerPrice *CustomerPrice   `json:"customerPrice,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	// Now is the evaluation instant for sale-window validation.
	Now time.Time `json:"now"`
}

var hundred = decimal.NewFromInt(100)

// Resolve selects the base unit price for a line. First match wins:
// prompted, customer, sale, bulk, retail. A malformed rule never
// errors; resolution falls through to the next tier so checkout cannot
// stall on bad promotional data.
func Resolve(p catalog.Product, ctx Context) (decimal.Decimal, Source) {
	if ctx.PromptedPrice != nil && ctx.PromptedPrice.IsPositive() {
		return money.Round2(*ctx.PromptedPrice), SourcePrompted
	}
	if price, ok := customerPrice(p, ctx); ok {
		return price, SourceCustomer
	}
	if price, ok := salePrice(p, ctx.Now); ok {
		return price, SourceSale
	}
	if price, ok := bulkPrice(p, ctx.Quantity); ok {
		return price, SourceBulk
	}
	return money.Round2(p.RetailPrice), SourceRetail
}

func customerPrice(p catalog.Product, ctx Context) (decimal.Decimal, bool) {
	cp := ctx.CustomerPrice
	if cp == nil {
		return decimal.Zero, false
	}
	if cp.ValidFrom != nil && ctx.Now.Before(*cp.ValidFrom) {
		return decimal.Zero, false
	}
	if cp.ValidTo != nil && ctx.Now.After(*cp.ValidTo) {
		return decimal.Zero, false
	}
	var price decimal.Decimal
	switch cp.Kind {
	case CustomerFixed:
		price = cp.Value
	case CustomerPercentOff:
		if cp.Value.IsNegative() || cp.Value.GreaterThan(hundred) {
			return decimal.Zero, false
		}
		off := money.Round4(p.RetailPrice.Mul(cp.Value).Div(hundred))
		price = p.RetailPrice.Sub(off)
	case CustomerAmountOff:
		price = p.RetailPrice.Sub(cp.Value)
	case CustomerCostPlus:
		if cp.Value.IsNegative() {
			return decimal.Zero, false
		}
		markup := money.Round4(p.Cost.Mul(cp.Value).Div(hundred))
		price = p.Cost.Add(markup)
	default:
		return decimal.Zero, false
	}
	if !price.IsPositive() {
		return decimal.Zero, false
	}
	return money.Round2(price), true
}

func salePrice(p catalog.Product, now time.Time) (decimal.Decimal, bool) {
	best := decimal.Zero
	found := false
	for _, s := range p.Sales {
		if !saleValid(s, now) {
			continue
		}
		if !s.Price.IsPositive() {
			continue
		}
		if !found || s.Price.LessThan(best) {
			best = s.Price
			found = true
		}
	}
	if !found {
		return decimal.Zero, false
	}
	return money.Round2(best), true
}

// saleValid applies the full sale-window check: active flag, date
// range, day-of-week mask, and time-of-day window where start > end
// denotes an overnight window.
func saleValid(s catalog.Sale, now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.StartDate != nil && now.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && now.After(*s.EndDate) {
		return false
	}
	if s.DayMask&(1<<uint(now.Weekday())) == 0 {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	switch {
	case s.StartMinute == nil && s.EndMinute == nil:
		return true
	case s.StartMinute != nil && s.EndMinute == nil:
		return minute >= *s.StartMinute
	case s.StartMinute == nil:
		return minute <= *s.EndMinute
	case *s.StartMinute <= *s.EndMinute:
		return minute >= *s.StartMinute && minute <= *s.EndMinute
	default:
		// Overnight window, e.g. 22:00-02:00.
		return minute >= *s.StartMinute || minute <= *s.EndMinute
	}
}

func bulkPrice(p catalog.Product, qty decimal.Decimal) (decimal.Decimal, bool) {
	var chosen *catalog.BulkTier
	for i := range p.BulkTiers {
		t := p.BulkTiers[i]
		if t.MinQty.IsNegative() || qty.LessThan(t.MinQty) {
			continue
		}
		if t.MaxQty != nil && qty.GreaterThan(*t.MaxQty) {
			continue
		}
		if chosen == nil || t.MinQty.GreaterThan(chosen.MinQty) {
			chosen = &p.BulkTiers[i]
		}
	}
	if chosen == nil {
		return decimal.Zero, false
	}
	var price decimal.Decimal
	switch chosen.Kind {
	case catalog.TierUnitPrice:
		price = chosen.Value
	case catalog.TierPercentOff:
		if chosen.Value.IsNegative() || chosen.Value.GreaterThan(hundred) {
			return decimal.Zero, false
		}
		off := money.Round4(p.RetailPrice.Mul(chosen.Value).Div(hundred))
		price = p.RetailPrice.Sub(off)
	case catalog.TierAmountOff:
		price = p.RetailPrice.Sub(chosen.Value)
	default:
		return decimal.Zero, false
	}
	if !price.IsPositive() {
		return decimal.Zero, false
	}
	return money.Round2(price), true
}
