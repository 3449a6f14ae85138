package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog fact consumed by the calculation engine. It is
// read-only: promotional records are already resolved to the current
// store by whoever loads it.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Cost        decimal.Decimal `json:"cost"`
	FloorPrice  decimal.Decimal `json:"floorPrice"`

	Sales     []Sale     `json:"sales,omitempty"`
	BulkTiers []BulkTier `json:"bulkTiers,omitempty"`

	Deposits DepositSchedule `json:"deposits"`

	// TaxRates are percentages at scale 3 (e.g. 8.250). The taxable sum
	// is their total; an empty list means the product is untaxed.
	TaxRates  []decimal.Decimal `json:"taxRates,omitempty"`
	TaxExempt bool              `json:"taxExempt"`

	SNAPEligible bool            `json:"snapEligible"`
	WICEligible  bool            `json:"wicEligible"`
	WICCategory  string          `json:"wicCategory,omitempty"`
	WICMaxQty    decimal.Decimal `json:"wicMaxQty"`
}

// TaxRateSum returns the combined percentage of all configured rates.
func (p Product) TaxRateSum() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range p.TaxRates {
		if r.IsNegative() {
			continue
		}
		sum = sum.Add(r)
	}
	return sum
}

// Sale is one sale-price record with its validity window. DayMask is a
// 7-bit mask indexed by time.Weekday (bit 0 = Sunday). StartMinute and
// EndMinute are minutes since midnight; a start greater than the end
// denotes an overnight window.
type Sale struct {
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	DayMask     uint8           `json:"dayMask"`
	StartMinute *int            `json:"startMinute,omitempty"`
	EndMinute   *int            `json:"endMinute,omitempty"`
}

// TierKind selects how a bulk tier derives its unit price.
type TierKind string

const (
	// TierUnitPrice sets the unit price directly.
	TierUnitPrice TierKind = "unit_price"
	// TierPercentOff discounts the retail price by a percentage.
	TierPercentOff TierKind = "percent_off"
	// TierAmountOff discounts the retail price by a fixed amount.
	TierAmountOff TierKind = "amount_off"
)

// BulkTier is a quantity-threshold price break. MaxQty nil means the
// tier is unbounded above.
type BulkTier struct {
	MinQty decimal.Decimal  `json:"minQty"`
	MaxQty *decimal.Decimal `json:"maxQty,omitempty"`
	Kind   TierKind         `json:"kind"`
	Value  decimal.Decimal  `json:"value"`
}

// DepositSchedule lists the mandatory per-unit charges attached to a
// product. Deposits are part of the taxable base and are never
// discounted.
type DepositSchedule struct {
	CRV           decimal.Decimal `json:"crv"`
	BottleDeposit decimal.Decimal `json:"bottleDeposit"`
	BagFee        decimal.Decimal `json:"bagFee"`
	OtherFee      decimal.Decimal `json:"otherFee"`
}

// PerUnit returns the sum of all configured per-unit charges. Negative
// entries are malformed configuration and contribute nothing.
func (d DepositSchedule) PerUnit() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range []decimal.Decimal{d.CRV, d.BottleDeposit, d.BagFee, d.OtherFee} {
		if v.IsPositive() {
			sum = sum.Add(v)
		}
	}
	return sum
}
