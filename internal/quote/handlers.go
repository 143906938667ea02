package quote

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwiky-labs/ongkir-api/internal/common"
	"github.com/dwiky-labs/ongkir-api/internal/obs"
)

// SnapshotLoader supplies the directory and rate-card snapshot covering the
// vendors present in a cart.
type SnapshotLoader interface {
	Snapshot(ctx context.Context, vendorIDs []uuid.UUID) (*Snapshot, error)
}

// Handler exposes the quoting endpoint.
type Handler struct {
	Loader   SnapshotLoader
	Validate *validator.Validate
	Currency string
}

type quoteItemPayload struct {
	ProductID  uuid.UUID       `json:"productId" validate:"required"`
	VendorID   uuid.UUID       `json:"vendorId" validate:"required"`
	CategoryID uuid.UUID       `json:"categoryId" validate:"required"`
	Quantity   int32           `json:"quantity" validate:"required,min=1"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type quoteRequestPayload struct {
	Items       []quoteItemPayload `json:"items" validate:"required,min=1,dive"`
	Destination struct {
		Province string `json:"province" validate:"required"`
		City     string `json:"city"`
	} `json:"destination" validate:"required"`
	PickupRequested bool `json:"pickupRequested"`
}

// Quote computes an order shipping quote for the posted cart snapshot.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Loader == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rate card loader not configured", nil)
		return
	}
	start := time.Now()

	var payload quoteRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.observe("bad_request", start, 0)
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			h.observe("bad_request", start, 0)
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid quote request", validationDetails(err))
			return
		}
	}

	req := Request{
		Cart:            CartSnapshot{Items: make([]LineItem, 0, len(payload.Items))},
		Destination:     Destination{Province: payload.Destination.Province, City: payload.Destination.City},
		PickupRequested: payload.PickupRequested,
	}
	vendorIDs := make([]uuid.UUID, 0, len(payload.Items))
	for _, item := range payload.Items {
		req.Cart.Items = append(req.Cart.Items, LineItem{
			ProductID:  item.ProductID,
			VendorID:   item.VendorID,
			CategoryID: item.CategoryID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
		vendorIDs = append(vendorIDs, item.VendorID)
	}
	if err := ValidateCart(req.Cart); err != nil {
		h.observe("bad_request", start, 0)
		common.JSONError(w, http.StatusBadRequest, ErrorCode(err), err.Error(), nil)
		return
	}

	snap, err := h.Loader.Snapshot(r.Context(), vendorIDs)
	if err != nil {
		h.renderError(w, err, start)
		return
	}
	order, err := Assemble(snap, req)
	if err != nil {
		h.renderError(w, err, start)
		return
	}

	h.observe("ok", start, len(order.Shipments))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":     order,
		"currency": h.Currency,
	})
}

// renderError maps engine and loader failures onto the API error envelope.
// Configuration gaps are the merchant's to fix, so they surface as 422 with
// a stable code rather than a generic 500.
func (h *Handler) renderError(w http.ResponseWriter, err error, start time.Time) {
	if code := ErrorCode(err); code != "" {
		h.observe("unprocessable", start, 0)
		common.JSONError(w, http.StatusUnprocessableEntity, code, err.Error(), nil)
		return
	}
	h.observe("error", start, 0)
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to compute shipping quote", nil)
}

func (h *Handler) observe(result string, start time.Time, shipments int) {
	if obs.QuotesTotal != nil {
		obs.QuotesTotal.WithLabelValues(result).Inc()
	}
	if obs.QuoteDuration != nil {
		obs.QuoteDuration.Observe(obs.DurationMillis(time.Since(start)))
	}
	if result == "ok" && obs.QuoteShipments != nil {
		obs.QuoteShipments.Observe(float64(shipments))
	}
}

func validationDetails(err error) any {
	var fieldErrs validator.ValidationErrors
	ok := false
	if ve, isVE := err.(validator.ValidationErrors); isVE {
		fieldErrs = ve
		ok = true
	}
	if !ok {
		return nil
	}
	details := make([]map[string]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, map[string]string{
			"field": fe.Namespace(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
