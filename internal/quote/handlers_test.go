package quote_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

type fakeLoader struct {
	snap *quote.Snapshot
	err  error

	gotVendorIDs []uuid.UUID
}

func (f *fakeLoader) Snapshot(_ context.Context, vendorIDs []uuid.UUID) (*quote.Snapshot, error) {
	f.gotVendorIDs = vendorIDs
	return f.snap, f.err
}

func newQuoteHandler(loader *fakeLoader) *quote.Handler {
	return &quote.Handler{
		Loader:   loader,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Currency: "USD",
	}
}

func postQuote(t *testing.T, h *quote.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	h.Quote(rr, req)
	return rr
}

func quotePayload(vendorID, categoryID uuid.UUID, qty int32) map[string]any {
	return map[string]any{
		"items": []map[string]any{{
			"productId":  uuid.New(),
			"vendorId":   vendorID,
			"categoryId": categoryID,
			"quantity":   qty,
			"unitPrice":  "12.50",
		}},
		"destination": map[string]any{
			"province": "Jawa Barat",
			"city":     "Bandung",
		},
	}
}

func TestQuoteEndpointHappyPath(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hubID := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hubID)
	scope := quote.VendorScope(vendorID)
	categoryID := uuid.New()
	b.weight(scope, categoryID, "0.50", "0.25")
	b.tariff(scope, "Jawa Barat", "", "5.00", "1", "1.00", 2)

	loader := &fakeLoader{snap: b.snap}
	rr := postQuote(t, newQuoteHandler(loader), quotePayload(vendorID, categoryID, 2))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []uuid.UUID{vendorID}, loader.gotVendorIDs)

	var resp struct {
		Data     quote.OrderShippingQuote `json:"data"`
		Currency string                   `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "USD", resp.Currency)
	require.Len(t, resp.Data.Shipments, 1)
	require.True(t, resp.Data.Total.Equal(dec("5.00")), "got %s", resp.Data.Total)
}

func TestQuoteEndpointRejectsEmptyItems(t *testing.T) {
	t.Parallel()

	h := newQuoteHandler(&fakeLoader{snap: newSnapshot().snap})
	rr := postQuote(t, h, map[string]any{
		"items":       []map[string]any{},
		"destination": map[string]any{"province": "Jawa Barat"},
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
}

func TestQuoteEndpointRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	h := newQuoteHandler(&fakeLoader{snap: newSnapshot().snap})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.Quote(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "BAD_REQUEST")
}

func TestQuoteEndpointConfigGapIsUnprocessable(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hubID := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hubID)
	categoryID := uuid.New()
	// no weight row for the category

	h := newQuoteHandler(&fakeLoader{snap: b.snap})
	rr := postQuote(t, h, quotePayload(vendorID, categoryID, 1))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "MISSING_WEIGHT_CONFIG")
}

func TestQuoteEndpointLoaderFailureIsInternal(t *testing.T) {
	t.Parallel()

	h := newQuoteHandler(&fakeLoader{err: errors.New("connection refused")})
	rr := postQuote(t, h, quotePayload(uuid.New(), uuid.New(), 1))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "INTERNAL")
	require.NotContains(t, rr.Body.String(), "connection refused")
}

func TestQuoteEndpointValidationDetailsNameFields(t *testing.T) {
	t.Parallel()

	h := newQuoteHandler(&fakeLoader{snap: newSnapshot().snap})
	rr := postQuote(t, h, map[string]any{
		"items": []map[string]any{{
			"productId":  uuid.New(),
			"vendorId":   uuid.New(),
			"categoryId": uuid.New(),
			"quantity":   0,
		}},
		"destination": map[string]any{"province": "Jawa Barat"},
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
				Rule  string `json:"rule"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	require.Contains(t, fmt.Sprintf("%v", resp.Error.Details), "Quantity")
}
