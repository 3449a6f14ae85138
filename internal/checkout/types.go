// Package checkout runs the full per-line calculation pipeline and
// aggregates line results into transaction totals. Every value it
// produces is immutable: a change to quantity, discounts, or benefit
// tender is answered by recomputing fresh values, never by mutation.
package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/pricing"
)

// LineCalculation is the audit-exact outcome for one cart line. All
// monetary fields are rounded to currency precision at construction;
// aggregation sums them without re-rounding.
type LineCalculation struct {
	ProductID uuid.UUID `json:"productId"`
	SKU       string    `json:"sku,omitempty"`
	Name      string    `json:"name,omitempty"`
	Removed   bool      `json:"removed,omitempty"`

	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	PriceSource pricing.Source  `json:"priceSource"`

	DepositPerUnit decimal.Decimal `json:"depositPerUnit"`
	DepositTotal   decimal.Decimal `json:"depositTotal"`

	Discounts     pricing.DiscountResult `json:"discounts"`
	DiscountTotal decimal.Decimal        `json:"discountTotal"`

	// FinalUnitPrice is post-discount, pre-tax, including deposits.
	FinalUnitPrice decimal.Decimal `json:"finalUnitPrice"`

	// Tax facts are retained so benefit re-derivation never needs the
	// catalog again.
	TaxRateSum decimal.Decimal `json:"taxRateSum"`
	TaxExempt  bool            `json:"taxExempt"`
	TaxPerUnit decimal.Decimal `json:"taxPerUnit"`
	TaxTotal   decimal.Decimal `json:"taxTotal"`

	Subtotal     decimal.Decimal `json:"subtotal"`
	SavingsTotal decimal.Decimal `json:"savingsTotal"`
	LineTotal    decimal.Decimal `json:"lineTotal"`

	SNAPEligible    bool            `json:"snapEligible"`
	WICEligible     bool            `json:"wicEligible"`
	WICMaxQty       decimal.Decimal `json:"wicMaxQty"`
	SNAPApplied     decimal.Decimal `json:"snapApplied"`
	WICApplied      decimal.Decimal `json:"wicApplied"`
	SubjectFraction decimal.Decimal `json:"subjectFraction"`
}

// EligibleValue is the benefit-apportionable value of the line:
// subtotal plus deposits, excluding tax. It does not depend on any
// prior apportionment, which keeps re-apportionment idempotent.
func (l LineCalculation) EligibleValue() decimal.Decimal {
	return l.Subtotal.Add(l.DepositTotal)
}

// TransactionCalculation aggregates per-line results. Each total is the
// plain sum of the corresponding already-rounded line field.
type TransactionCalculation struct {
	Lines []LineCalculation `json:"lines"`

	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	TaxTotal      decimal.Decimal `json:"taxTotal"`
	DepositTotal  decimal.Decimal `json:"depositTotal"`
	SavingsTotal  decimal.Decimal `json:"savingsTotal"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}
