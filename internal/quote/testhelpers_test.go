package quote_test

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

// snapshotBuilder assembles quote snapshots for tests without dragging the
// ratecard loader in.
type snapshotBuilder struct {
	snap *quote.Snapshot
}

func newSnapshot() *snapshotBuilder {
	return &snapshotBuilder{snap: &quote.Snapshot{
		Vendors:   map[uuid.UUID]quote.Vendor{},
		Alliances: map[uuid.UUID]quote.Alliance{},
		Hubs:      map[uuid.UUID]quote.Hub{},
		Weights:   map[quote.Scope][]quote.CategoryWeight{},
		Tariffs:   map[quote.Scope][]quote.Tariff{},
		Rules:     map[quote.Scope]quote.ShippingRules{},
	}}
}

func (b *snapshotBuilder) hub(province, city string) uuid.UUID {
	id := uuid.New()
	b.snap.Hubs[id] = quote.Hub{ID: id, Province: province, City: city, Address: city + " warehouse"}
	return id
}

func (b *snapshotBuilder) vendor(hubID uuid.UUID) uuid.UUID {
	id := uuid.New()
	b.snap.Vendors[id] = quote.Vendor{ID: id, HubID: hubID}
	return id
}

func (b *snapshotBuilder) allianceVendor(allianceID, hubID uuid.UUID) uuid.UUID {
	id := uuid.New()
	b.snap.Vendors[id] = quote.Vendor{ID: id, HubID: hubID, AllianceID: &allianceID}
	return id
}

func (b *snapshotBuilder) alliance(hubID uuid.UUID, active bool) uuid.UUID {
	id := uuid.New()
	b.snap.Alliances[id] = quote.Alliance{ID: id, HubID: hubID, Active: active}
	return id
}

func (b *snapshotBuilder) weight(scope quote.Scope, categoryID uuid.UUID, baseKg, incKg string) {
	b.snap.Weights[scope] = append(b.snap.Weights[scope], quote.CategoryWeight{
		Scope:         scope,
		CategoryID:    categoryID,
		BaseKg:        dec(baseKg),
		IncrementalKg: dec(incKg),
	})
}

func (b *snapshotBuilder) tariff(scope quote.Scope, province, city, basePrice, includedKg, perKg string, days int32) uuid.UUID {
	id := uuid.New()
	b.snap.Tariffs[scope] = append(b.snap.Tariffs[scope], quote.Tariff{
		ID:              id,
		Scope:           scope,
		Province:        province,
		City:            city,
		BasePrice:       dec(basePrice),
		IncludedKg:      dec(includedKg),
		PricePerExtraKg: dec(perKg),
		EstimatedDays:   days,
	})
	return id
}

func (b *snapshotBuilder) rules(scope quote.Scope, r quote.ShippingRules) {
	r.Scope = scope
	b.snap.Rules[scope] = r
}

func item(vendorID, categoryID uuid.UUID, qty int32, unitPrice string) quote.LineItem {
	return quote.LineItem{
		ProductID:  uuid.New(),
		VendorID:   vendorID,
		CategoryID: categoryID,
		Quantity:   qty,
		UnitPrice:  dec(unitPrice),
	}
}
