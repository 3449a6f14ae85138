// Package quote exposes the calculation engine over HTTP. It is the
// only place where catalog lookups, the engine, and the audit journal
// meet; the engine packages themselves stay free of I/O.
package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kirakosyanara/gropos/internal/benefit"
	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/checkout"
	"github.com/kirakosyanara/gropos/internal/common"
	"github.com/kirakosyanara/gropos/internal/obs"
	"github.com/kirakosyanara/gropos/internal/pricing"
	"github.com/kirakosyanara/gropos/internal/resilience"
)

// LineRequest is one cart line to price.
type LineRequest struct {
	ProductID     string                 `json:"productId" validate:"required,uuid"`
	Quantity      decimal.Decimal        `json:"quantity"`
	PromptedPrice *decimal.Decimal       `json:"promptedPrice,omitempty"`
	CustomerPrice *pricing.CustomerPrice `json:"customerPrice,omitempty"`
	Discounts     pricing.DiscountInputs `json:"discounts"`
	Removed       bool                   `json:"removed,omitempty"`
}

// QuoteRequest prices a whole cart. Tender fields are optional: absent
// tender is the pre-payment display pass, present tender is the receipt
// pass with benefit apportionment applied.
type QuoteRequest struct {
	Lines        []LineRequest    `json:"lines" validate:"required,min=1,max=100,dive"`
	SNAPTendered *decimal.Decimal `json:"snapTendered,omitempty"`
	WICTendered  *decimal.Decimal `json:"wicTendered,omitempty"`
}

// QuoteResponse carries the aggregate plus the apportionment outcome
// when tender was supplied.
type QuoteResponse struct {
	Transaction   checkout.TransactionCalculation `json:"transaction"`
	Apportionment *benefit.Result                 `json:"apportionment,omitempty"`
}

// Handler wires the engine to HTTP.
type Handler struct {
	Store    catalog.Store
	Validate *validator.Validate
	Logger   zerolog.Logger
	Now      func() time.Time
	// RecordQuote, when set, journals the finalized aggregate. Failures
	// are logged, never surfaced to the caller.
	RecordQuote func(r *http.Request, tc checkout.TransactionCalculation)
}

func (h *Handler) now() time.Time {
	if h != nil && h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Quote prices the submitted cart and returns the transaction
// calculation.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Store == nil {
		common.RenderError(w, common.E(http.StatusInternalServerError, "INTERNAL", "quote handler not configured"))
		return
	}
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RenderError(w, common.E(http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body exceeds the limit"))
			return
		}
		common.RenderError(w, common.E(http.StatusBadRequest, "BAD_REQUEST", "malformed request body"))
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.RenderError(w, common.E(http.StatusBadRequest, "VALIDATION", "invalid quote request").WithDetails(err.Error()))
			return
		}
	}

	now := h.now()
	lines := make([]checkout.LineCalculation, 0, len(req.Lines))
	for _, lr := range req.Lines {
		id, err := uuid.Parse(lr.ProductID)
		if err != nil {
			common.RenderError(w, common.E(http.StatusBadRequest, "BAD_REQUEST", "invalid product id").WithDetails(lr.ProductID))
			return
		}
		if lr.Quantity.IsNegative() {
			common.RenderError(w, common.E(http.StatusBadRequest, "BAD_REQUEST", "quantity must not be negative").WithDetails(lr.ProductID))
			return
		}
		product, err := h.Store.Product(r.Context(), id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				common.RenderError(w, common.E(http.StatusNotFound, "NOT_FOUND", "unknown product").WithDetails(lr.ProductID))
				return
			}
			if errors.Is(err, resilience.ErrOpen) {
				common.RenderError(w, common.E(http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog temporarily unavailable"))
				return
			}
			h.Logger.Error().Err(err).Str("product_id", lr.ProductID).Msg("catalog lookup failed")
			common.RenderError(w, common.E(http.StatusInternalServerError, "INTERNAL", "unable to load product").WithCause(err))
			return
		}
		line := checkout.PriceLine(product, pricing.Context{
			PromptedPrice: lr.PromptedPrice,
			CustomerPrice: lr.CustomerPrice,
			Quantity:      lr.Quantity,
			Now:           now,
		}, lr.Discounts)
		line.Removed = lr.Removed
		lines = append(lines, line)
	}

	var apportionment *benefit.Result
	if req.SNAPTendered != nil || req.WICTendered != nil {
		snap, wic := decimal.Zero, decimal.Zero
		if req.SNAPTendered != nil {
			snap = *req.SNAPTendered
		}
		if req.WICTendered != nil {
			wic = *req.WICTendered
		}
		var res benefit.Result
		lines, res = checkout.ReapplyBenefit(lines, snap, wic)
		apportionment = &res
		if obs.BenefitUncoveredTotal != nil && (res.SNAPUncovered.IsPositive() || res.WICUncovered.IsPositive()) {
			obs.BenefitUncoveredTotal.Inc()
		}
	}

	tc, err := checkout.Aggregate(lines)
	if err != nil {
		h.Logger.Error().Err(err).Msg("aggregate invariant violation")
		countQuote("invariant_violation")
		common.RenderError(w, common.E(http.StatusInternalServerError, "INVARIANT_VIOLATION", "transaction totals do not reconcile"))
		return
	}

	if obs.FloorEnforcedTotal != nil {
		for _, l := range tc.Lines {
			if l.Discounts.FloorOutcome == pricing.FloorEnforced {
				obs.FloorEnforcedTotal.Inc()
			}
		}
	}
	if obs.QuoteLines != nil {
		obs.QuoteLines.Observe(float64(len(tc.Lines)))
	}
	countQuote("ok")

	if h.RecordQuote != nil {
		h.RecordQuote(r, tc)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": QuoteResponse{Transaction: tc, Apportionment: apportionment}})
}

func countQuote(result string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
}
