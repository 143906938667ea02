package ratecard

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

// buildSnapshot converts raw rows into an engine snapshot, rejecting any row
// that breaks a data-integrity invariant. Catching bad rows here keeps the
// calculation free of per-use-site null checks.
func buildSnapshot(set rowSet) (*quote.Snapshot, error) {
	snap := &quote.Snapshot{
		Vendors:   make(map[uuid.UUID]quote.Vendor, len(set.Vendors)),
		Alliances: make(map[uuid.UUID]quote.Alliance, len(set.Alliances)),
		Hubs:      make(map[uuid.UUID]quote.Hub, len(set.Hubs)),
		Weights:   make(map[quote.Scope][]quote.CategoryWeight),
		Tariffs:   make(map[quote.Scope][]quote.Tariff),
		Rules:     make(map[quote.Scope]quote.ShippingRules),
	}

	for _, h := range set.Hubs {
		snap.Hubs[h.ID] = quote.Hub{ID: h.ID, Province: h.Province, City: h.City, Address: h.Address}
	}
	for _, a := range set.Alliances {
		snap.Alliances[a.ID] = quote.Alliance{ID: a.ID, HubID: a.HubID, Active: a.Active}
	}
	for _, v := range set.Vendors {
		if v.AllianceID != nil {
			// A member may not declare a different pickup hub than its alliance.
			if alliance, ok := snap.Alliances[*v.AllianceID]; ok && alliance.HubID != v.HubID {
				return nil, &quote.MalformedConfigError{
					Table:  "vendors",
					RowID:  v.ID,
					Reason: "hub differs from alliance hub",
				}
			}
		}
		snap.Vendors[v.ID] = quote.Vendor{ID: v.ID, HubID: v.HubID, AllianceID: v.AllianceID}
	}

	for _, w := range set.Weights {
		scope, err := scopeOf("category_weights", w.ID, w.AllianceID, w.VendorID)
		if err != nil {
			return nil, err
		}
		baseKg, err := parseDecimal("category_weights", w.ID, "base_weight_kg", w.BaseKg)
		if err != nil {
			return nil, err
		}
		incKg, err := parseDecimal("category_weights", w.ID, "incremental_weight_kg", w.IncrementalKg)
		if err != nil {
			return nil, err
		}
		snap.Weights[scope] = append(snap.Weights[scope], quote.CategoryWeight{
			Scope:         scope,
			CategoryID:    w.CategoryID,
			BaseKg:        baseKg,
			IncrementalKg: incKg,
		})
	}

	type destKey struct {
		scope    quote.Scope
		province string
		city     string
	}
	seenDest := make(map[destKey]bool)
	for _, t := range set.Tariffs {
		scope, err := scopeOf("tariffs", t.ID, t.AllianceID, t.VendorID)
		if err != nil {
			return nil, err
		}
		basePrice, err := parseDecimal("tariffs", t.ID, "base_price", t.BasePrice)
		if err != nil {
			return nil, err
		}
		includedKg, err := parseDecimal("tariffs", t.ID, "included_weight_kg", t.IncludedKg)
		if err != nil {
			return nil, err
		}
		perKg, err := parseDecimal("tariffs", t.ID, "price_per_extra_kg", t.PricePerExtraKg)
		if err != nil {
			return nil, err
		}
		city := ""
		if t.City != nil {
			city = *t.City
		}
		key := destKey{scope: scope, province: normalizePlace(t.Province), city: normalizePlace(city)}
		if seenDest[key] {
			return nil, &quote.MalformedConfigError{
				Table:  "tariffs",
				RowID:  t.ID,
				Reason: "duplicate destination for scope " + scope.String(),
			}
		}
		seenDest[key] = true
		snap.Tariffs[scope] = append(snap.Tariffs[scope], quote.Tariff{
			ID:              t.ID,
			Scope:           scope,
			Province:        t.Province,
			City:            city,
			BasePrice:       basePrice,
			IncludedKg:      includedKg,
			PricePerExtraKg: perKg,
			EstimatedDays:   t.EstimatedDays,
		})
	}

	for _, r := range set.Rules {
		scope, err := scopeOf("shipping_rules", r.ID, r.AllianceID, r.VendorID)
		if err != nil {
			return nil, err
		}
		if _, exists := snap.Rules[scope]; exists {
			return nil, &quote.MalformedConfigError{
				Table:  "shipping_rules",
				RowID:  r.ID,
				Reason: "duplicate rules row for scope " + scope.String(),
			}
		}
		rules, err := rulesFromRow(scope, r)
		if err != nil {
			return nil, err
		}
		snap.Rules[scope] = rules
	}

	return snap, nil
}

func rulesFromRow(scope quote.Scope, r rulesRow) (quote.ShippingRules, error) {
	rules := quote.ShippingRules{
		Scope:           scope,
		AllowsHubPickup: r.AllowsHubPickup,
	}
	var err error
	if r.FreeShippingThreshold != nil {
		threshold, perr := parseDecimal("shipping_rules", r.ID, "free_shipping_threshold", *r.FreeShippingThreshold)
		if perr != nil {
			return rules, perr
		}
		rules.FreeShippingThreshold = &threshold
	}
	switch scopeValue := quote.FreeShippingScope(r.FreeShippingScope); scopeValue {
	case quote.FreeScopeAll, quote.FreeScopeSameProvince, quote.FreeScopeSameCity, "":
		rules.FreeShippingScope = scopeValue
	default:
		return rules, &quote.MalformedConfigError{
			Table:  "shipping_rules",
			RowID:  r.ID,
			Reason: fmt.Sprintf("unknown free_shipping_scope %q", r.FreeShippingScope),
		}
	}
	if rules.TierThreePercent, err = parseDecimal("shipping_rules", r.ID, "tier3_percent", r.TierThreePercent); err != nil {
		return rules, err
	}
	if rules.TierFivePercent, err = parseDecimal("shipping_rules", r.ID, "tier5_percent", r.TierFivePercent); err != nil {
		return rules, err
	}
	if rules.TierTenPercent, err = parseDecimal("shipping_rules", r.ID, "tier10_percent", r.TierTenPercent); err != nil {
		return rules, err
	}
	if rules.PrepCharge, err = parseDecimal("shipping_rules", r.ID, "prep_charge", r.PrepCharge); err != nil {
		return rules, err
	}
	if rules.PickupDiscountPercent, err = parseDecimal("shipping_rules", r.ID, "pickup_discount_percent", r.PickupDiscountPercent); err != nil {
		return rules, err
	}
	if rules.PickupDiscountPercent.Sign() < 0 || rules.PickupDiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return rules, &quote.MalformedConfigError{
			Table:  "shipping_rules",
			RowID:  r.ID,
			Reason: "pickup_discount_percent outside 0-100",
		}
	}
	return rules, nil
}

// scopeOf enforces the "exactly one of alliance_id/vendor_id" invariant and
// converts the nullable pair into the engine's tagged scope.
func scopeOf(table string, rowID uuid.UUID, allianceID, vendorID *uuid.UUID) (quote.Scope, error) {
	switch {
	case allianceID != nil && vendorID != nil:
		return quote.Scope{}, &quote.MalformedConfigError{Table: table, RowID: rowID, Reason: "both alliance_id and vendor_id set"}
	case allianceID != nil:
		return quote.AllianceScope(*allianceID), nil
	case vendorID != nil:
		return quote.VendorScope(*vendorID), nil
	default:
		return quote.Scope{}, &quote.MalformedConfigError{Table: table, RowID: rowID, Reason: "neither alliance_id nor vendor_id set"}
	}
}

func parseDecimal(table string, rowID uuid.UUID, column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &quote.MalformedConfigError{
			Table:  table,
			RowID:  rowID,
			Reason: fmt.Sprintf("%s is not a valid decimal: %q", column, value),
		}
	}
	return d, nil
}

func normalizePlace(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
