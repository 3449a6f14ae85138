package quote_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kirakosyanara/gropos/internal/catalog"
	"github.com/kirakosyanara/gropos/internal/checkout"
	"github.com/kirakosyanara/gropos/internal/money"
	"github.com/kirakosyanara/gropos/internal/quote"
)

type stubStore struct {
	products map[uuid.UUID]catalog.Product
}

func (s *stubStore) Product(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type quoteEnvelope struct {
	Data quote.QuoteResponse `json:"data"`
}

func fixtureStore() (*stubStore, []uuid.UUID) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	eight := []decimal.Decimal{money.MustParse("8")}
	store := &stubStore{products: map[uuid.UUID]catalog.Product{
		ids[0]: {ID: ids[0], SKU: "BREAD", RetailPrice: money.MustParse("2.99"), TaxRates: eight, SNAPEligible: true},
		ids[1]: {ID: ids[1], SKU: "CEREAL", RetailPrice: money.MustParse("3.99"), TaxRates: eight, SNAPEligible: true},
		ids[2]: {ID: ids[2], SKU: "GUM", RetailPrice: money.MustParse("0.20")},
	}}
	return store, ids
}

func newHandler(store catalog.Store) *quote.Handler {
	return &quote.Handler{
		Store:    store,
		Validate: validator.New(),
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) },
	}
}

func postQuote(t *testing.T, h *quote.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", &buf)
	rec := httptest.NewRecorder()
	h.Quote(rec, req)
	return rec
}

func lineFor(id uuid.UUID, qty string) quote.LineRequest {
	return quote.LineRequest{ProductID: id.String(), Quantity: money.MustParse(qty)}
}

func TestQuoteBasket(t *testing.T) {
	store, ids := fixtureStore()
	h := newHandler(store)

	rec := postQuote(t, h, quote.QuoteRequest{Lines: []quote.LineRequest{
		lineFor(ids[0], "1"),
		lineFor(ids[1], "1"),
		lineFor(ids[2], "1"),
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env quoteEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	tc := env.Data.Transaction
	require.True(t, tc.Subtotal.Equal(money.MustParse("7.18")), "subtotal %s", tc.Subtotal)
	require.True(t, tc.TaxTotal.Equal(money.MustParse("0.56")), "tax %s", tc.TaxTotal)
	require.True(t, tc.GrandTotal.Equal(money.MustParse("7.74")), "grand %s", tc.GrandTotal)
	require.Nil(t, env.Data.Apportionment)
}

func TestQuoteWithSNAPTender(t *testing.T) {
	store, ids := fixtureStore()
	h := newHandler(store)

	snap := money.MustParse("2.99")
	rec := postQuote(t, h, quote.QuoteRequest{
		Lines:        []quote.LineRequest{lineFor(ids[0], "1"), lineFor(ids[2], "1")},
		SNAPTendered: &snap,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env quoteEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Data.Apportionment)
	require.True(t, env.Data.Apportionment.SNAPUncovered.IsZero())

	// The covered bread line owes no tax.
	tc := env.Data.Transaction
	require.True(t, tc.TaxTotal.IsZero(), "tax %s", tc.TaxTotal)
	require.True(t, tc.Lines[0].SNAPApplied.Equal(snap))
}

func TestQuoteUncoveredTenderReported(t *testing.T) {
	store, ids := fixtureStore()
	h := newHandler(store)

	snap := money.MustParse("50.00")
	rec := postQuote(t, h, quote.QuoteRequest{
		Lines:        []quote.LineRequest{lineFor(ids[0], "1")},
		SNAPTendered: &snap,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var env quoteEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Data.Apportionment)
	require.True(t, env.Data.Apportionment.SNAPUncovered.Equal(money.MustParse("47.01")),
		"uncovered %s", env.Data.Apportionment.SNAPUncovered)
}

func TestQuoteUnknownProduct(t *testing.T) {
	store, _ := fixtureStore()
	h := newHandler(store)

	rec := postQuote(t, h, quote.QuoteRequest{Lines: []quote.LineRequest{lineFor(uuid.New(), "1")}})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuoteMalformedBody(t *testing.T) {
	store, _ := fixtureStore()
	h := newHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	h.Quote(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteEmptyCartRejected(t *testing.T) {
	store, _ := fixtureStore()
	h := newHandler(store)

	rec := postQuote(t, h, quote.QuoteRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteNegativeQuantityRejected(t *testing.T) {
	store, ids := fixtureStore()
	h := newHandler(store)

	rec := postQuote(t, h, quote.QuoteRequest{Lines: []quote.LineRequest{lineFor(ids[0], "-1")}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteRecordsJournal(t *testing.T) {
	store, ids := fixtureStore()
	h := newHandler(store)

	var recorded *checkout.TransactionCalculation
	h.RecordQuote = func(_ *http.Request, tc checkout.TransactionCalculation) {
		recorded = &tc
	}

	rec := postQuote(t, h, quote.QuoteRequest{Lines: []quote.LineRequest{lineFor(ids[0], "1")}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, recorded)
	require.True(t, recorded.GrandTotal.Equal(money.MustParse("3.23")), "grand %s", recorded.GrandTotal)
}
