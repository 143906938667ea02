package ratecard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dwiky-labs/ongkir-api/internal/common"
	"github.com/dwiky-labs/ongkir-api/internal/obs"
	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

// AdminHandler exposes merchant-facing CRUD over rate-card rows. Every write
// invalidates the snapshot cache so quotes pick the change up immediately.
type AdminHandler struct {
	Pool     *pgxpool.Pool
	Cache    *Cache
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type weightPayload struct {
	BaseWeightKg        decimal.Decimal `json:"baseWeightKg"`
	IncrementalWeightKg decimal.Decimal `json:"incrementalWeightKg"`
}

type tariffPayload struct {
	Province        string          `json:"province" validate:"required"`
	City            string          `json:"city"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	IncludedKg      decimal.Decimal `json:"includedWeightKg"`
	PricePerExtraKg decimal.Decimal `json:"pricePerExtraKg"`
	EstimatedDays   int32           `json:"estimatedDays" validate:"min=0"`
}

type rulesPayload struct {
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold"`
	FreeShippingScope     string           `json:"freeShippingScope" validate:"omitempty,oneof=all same_province same_city"`
	Tier3Percent          decimal.Decimal  `json:"tier3Percent"`
	Tier5Percent          decimal.Decimal  `json:"tier5Percent"`
	Tier10Percent         decimal.Decimal  `json:"tier10Percent"`
	PrepCharge            decimal.Decimal  `json:"prepCharge"`
	AllowsHubPickup       bool             `json:"allowsHubPickup"`
	PickupDiscountPercent decimal.Decimal  `json:"pickupDiscountPercent"`
}

// UpsertWeight creates or replaces the weight row for one category under a
// scope.
func (h *AdminHandler) UpsertWeight(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeParam(w, r)
	if !ok {
		return
	}
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid category id", nil)
		return
	}
	var payload weightPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.BaseWeightKg.Sign() < 0 || payload.IncrementalWeightKg.Sign() < 0 {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "weights must not be negative", nil)
		return
	}

	allianceID, vendorID := ownerColumns(scope)
	_, err = h.Pool.Exec(r.Context(), `
		INSERT INTO category_weights (alliance_id, vendor_id, category_id, base_weight_kg, incremental_weight_kg)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (COALESCE(alliance_id, vendor_id), category_id)
		DO UPDATE SET base_weight_kg = EXCLUDED.base_weight_kg,
		              incremental_weight_kg = EXCLUDED.incremental_weight_kg`,
		allianceID, vendorID, categoryID, payload.BaseWeightKg.String(), payload.IncrementalWeightKg.String())
	if err != nil {
		h.renderWriteError(w, err, "failed to store category weight")
		return
	}
	h.afterWrite(r, "weight_upsert")
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"scope":               scope.String(),
			"categoryId":          categoryID,
			"baseWeightKg":        payload.BaseWeightKg,
			"incrementalWeightKg": payload.IncrementalWeightKg,
		},
	})
}

// DeleteWeight removes a category weight row.
func (h *AdminHandler) DeleteWeight(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeParam(w, r)
	if !ok {
		return
	}
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid category id", nil)
		return
	}
	allianceID, vendorID := ownerColumns(scope)
	tag, err := h.Pool.Exec(r.Context(), `
		DELETE FROM category_weights
		WHERE COALESCE(alliance_id, vendor_id) = COALESCE($1, $2) AND category_id = $3`,
		allianceID, vendorID, categoryID)
	if err != nil {
		h.renderWriteError(w, err, "failed to delete category weight")
		return
	}
	if tag.RowsAffected() == 0 {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "category weight not found", nil)
		return
	}
	h.afterWrite(r, "weight_delete")
	w.WriteHeader(http.StatusNoContent)
}

// UpsertTariff creates or replaces the tariff row for one destination under
// a scope. The destination key is (province, city); an empty city means the
// row covers the whole province.
func (h *AdminHandler) UpsertTariff(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeParam(w, r)
	if !ok {
		return
	}
	var payload tariffPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid tariff", nil)
			return
		}
	}
	if payload.BasePrice.Sign() < 0 || payload.PricePerExtraKg.Sign() < 0 || payload.IncludedKg.Sign() < 0 {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "prices and weights must not be negative", nil)
		return
	}

	allianceID, vendorID := ownerColumns(scope)
	var city *string
	if payload.City != "" {
		city = &payload.City
	}
	var id uuid.UUID
	err := h.Pool.QueryRow(r.Context(), `
		INSERT INTO tariffs (alliance_id, vendor_id, province, city, base_price, included_weight_kg, price_per_extra_kg, estimated_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (COALESCE(alliance_id, vendor_id), lower(province), lower(COALESCE(city, '')))
		DO UPDATE SET base_price = EXCLUDED.base_price,
		              included_weight_kg = EXCLUDED.included_weight_kg,
		              price_per_extra_kg = EXCLUDED.price_per_extra_kg,
		              estimated_days = EXCLUDED.estimated_days
		RETURNING id`,
		allianceID, vendorID, payload.Province, city,
		payload.BasePrice.String(), payload.IncludedKg.String(), payload.PricePerExtraKg.String(), payload.EstimatedDays).Scan(&id)
	if err != nil {
		h.renderWriteError(w, err, "failed to store tariff")
		return
	}
	h.afterWrite(r, "tariff_upsert")
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"id":    id,
			"scope": scope.String(),
		},
	})
}

// DeleteTariff removes a tariff row by id within a scope.
func (h *AdminHandler) DeleteTariff(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeParam(w, r)
	if !ok {
		return
	}
	tariffID, err := uuid.Parse(chi.URLParam(r, "tariffId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid tariff id", nil)
		return
	}
	allianceID, vendorID := ownerColumns(scope)
	tag, err := h.Pool.Exec(r.Context(), `
		DELETE FROM tariffs
		WHERE id = $1 AND COALESCE(alliance_id, vendor_id) = COALESCE($2, $3)`,
		tariffID, allianceID, vendorID)
	if err != nil {
		h.renderWriteError(w, err, "failed to delete tariff")
		return
	}
	if tag.RowsAffected() == 0 {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "tariff not found", nil)
		return
	}
	h.afterWrite(r, "tariff_delete")
	w.WriteHeader(http.StatusNoContent)
}

// UpsertRules creates or replaces the single shipping-rules row of a scope.
func (h *AdminHandler) UpsertRules(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeParam(w, r)
	if !ok {
		return
	}
	var payload rulesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid shipping rules", nil)
			return
		}
	}
	if payload.PickupDiscountPercent.Sign() < 0 || payload.PickupDiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "pickupDiscountPercent must be between 0 and 100", nil)
		return
	}

	allianceID, vendorID := ownerColumns(scope)
	var threshold *string
	if payload.FreeShippingThreshold != nil {
		s := payload.FreeShippingThreshold.String()
		threshold = &s
	}
	freeScope := payload.FreeShippingScope
	if freeScope == "" {
		freeScope = string(quote.FreeScopeAll)
	}
	_, err := h.Pool.Exec(r.Context(), `
		INSERT INTO shipping_rules (alliance_id, vendor_id, free_shipping_threshold, free_shipping_scope,
		                            tier3_percent, tier5_percent, tier10_percent,
		                            prep_charge, allows_hub_pickup, pickup_discount_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (COALESCE(alliance_id, vendor_id))
		DO UPDATE SET free_shipping_threshold = EXCLUDED.free_shipping_threshold,
		              free_shipping_scope = EXCLUDED.free_shipping_scope,
		              tier3_percent = EXCLUDED.tier3_percent,
		              tier5_percent = EXCLUDED.tier5_percent,
		              tier10_percent = EXCLUDED.tier10_percent,
		              prep_charge = EXCLUDED.prep_charge,
		              allows_hub_pickup = EXCLUDED.allows_hub_pickup,
		              pickup_discount_percent = EXCLUDED.pickup_discount_percent`,
		allianceID, vendorID, threshold, freeScope,
		payload.Tier3Percent.String(), payload.Tier5Percent.String(), payload.Tier10Percent.String(),
		payload.PrepCharge.String(), payload.AllowsHubPickup, payload.PickupDiscountPercent.String())
	if err != nil {
		h.renderWriteError(w, err, "failed to store shipping rules")
		return
	}
	h.afterWrite(r, "rules_upsert")
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"scope": scope.String()},
	})
}

// GetRateCard lists every configuration row owned by a scope.
func (h *AdminHandler) GetRateCard(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeParam(w, r)
	if !ok {
		return
	}
	allianceID, vendorID := ownerColumns(scope)

	store := &Store{Pool: h.Pool}
	var vendorIDs, allianceIDs []uuid.UUID
	if vendorID != nil {
		vendorIDs = []uuid.UUID{*vendorID}
	}
	if allianceID != nil {
		allianceIDs = []uuid.UUID{*allianceID}
	}
	snap, err := store.loadScopeRows(r.Context(), vendorIDs, allianceIDs)
	if err != nil {
		if malformed := quote.ErrorCode(err); malformed != "" {
			common.JSONError(w, http.StatusUnprocessableEntity, malformed, err.Error(), nil)
			return
		}
		h.Logger.Error().Err(err).Str("scope", scope.String()).Msg("load rate card")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load rate card", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"scope":   scope.String(),
			"weights": snap.Weights[scope],
			"tariffs": snap.Tariffs[scope],
			"rules":   snap.RulesFor(scope),
		},
	})
}

func (h *AdminHandler) scopeParam(w http.ResponseWriter, r *http.Request) (quote.Scope, bool) {
	scope, err := quote.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "scope must be alliance:<uuid> or vendor:<uuid>", nil)
		return quote.Scope{}, false
	}
	return scope, true
}

func (h *AdminHandler) afterWrite(r *http.Request, operation string) {
	if obs.AdminWritesTotal != nil {
		obs.AdminWritesTotal.WithLabelValues(operation).Inc()
	}
	if err := h.Cache.Invalidate(r.Context()); err != nil {
		h.Logger.Warn().Err(err).Msg("invalidate ratecard cache")
	}
}

func (h *AdminHandler) renderWriteError(w http.ResponseWriter, err error, message string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			common.JSONError(w, http.StatusUnprocessableEntity, "UNKNOWN_REFERENCE", "referenced scope does not exist", nil)
			return
		case "23514":
			common.JSONError(w, http.StatusUnprocessableEntity, "MALFORMED_CONFIG_ROW", pgErr.Message, nil)
			return
		}
	}
	h.Logger.Error().Err(err).Msg(message)
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", message, nil)
}

// ownerColumns splits a scope back into the nullable column pair used by the
// storage schema.
func ownerColumns(scope quote.Scope) (allianceID, vendorID *uuid.UUID) {
	id := scope.ID
	if scope.Kind == quote.ScopeAlliance {
		return &id, nil
	}
	return nil, &id
}
