package quote

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one cart line as supplied by the cart layer.
type LineItem struct {
	ProductID  uuid.UUID       `json:"productId"`
	VendorID   uuid.UUID       `json:"vendorId"`
	CategoryID uuid.UUID       `json:"categoryId"`
	Quantity   int32           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// CartSnapshot is the resolved cart handed to the engine. The engine never
// fetches cart state itself.
type CartSnapshot struct {
	Items []LineItem `json:"items"`
}

// Destination is where the order ships to. An empty City means the buyer
// only specified a province.
type Destination struct {
	Province string `json:"province"`
	City     string `json:"city,omitempty"`
}

// Hub is a physical consolidation point shared by vendors and alliances.
type Hub struct {
	ID       uuid.UUID `json:"id"`
	Province string    `json:"province"`
	City     string    `json:"city"`
	Address  string    `json:"address"`
}

// Vendor describes a seller's shipping affiliation. A nil AllianceID means
// the vendor ships on its own configuration.
type Vendor struct {
	ID         uuid.UUID  `json:"id"`
	HubID      uuid.UUID  `json:"hubId"`
	AllianceID *uuid.UUID `json:"allianceId,omitempty"`
}

// Alliance groups vendors behind one hub and one shared configuration scope.
type Alliance struct {
	ID     uuid.UUID `json:"id"`
	HubID  uuid.UUID `json:"hubId"`
	Active bool      `json:"active"`
}

// CategoryWeight holds the base/incremental weights for one category under
// one scope. The first unit of a category in a shipment weighs BaseKg, every
// further unit adds IncrementalKg.
type CategoryWeight struct {
	Scope         Scope           `json:"scope"`
	CategoryID    uuid.UUID       `json:"categoryId"`
	BaseKg        decimal.Decimal `json:"baseWeightKg"`
	IncrementalKg decimal.Decimal `json:"incrementalWeightKg"`
}

// Tariff prices one destination for one scope. An empty City applies to the
// whole province.
type Tariff struct {
	ID              uuid.UUID       `json:"id"`
	Scope           Scope           `json:"scope"`
	Province        string          `json:"province"`
	City            string          `json:"city,omitempty"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	IncludedKg      decimal.Decimal `json:"includedWeightKg"`
	PricePerExtraKg decimal.Decimal `json:"pricePerExtraKg"`
	EstimatedDays   int32           `json:"estimatedDays"`
}

// FreeShippingScope restricts where a free-shipping threshold applies,
// relative to the shipment's hub.
type FreeShippingScope string

const (
	FreeScopeAll          FreeShippingScope = "all"
	FreeScopeSameProvince FreeShippingScope = "same_province"
	FreeScopeSameCity     FreeShippingScope = "same_city"
)

// ShippingRules carries the discount configuration for one scope. The zero
// value disables every discount and charges no prep fee, which is the safe
// behaviour for scopes that never configured rules.
type ShippingRules struct {
	Scope                 Scope             `json:"scope"`
	FreeShippingThreshold *decimal.Decimal  `json:"freeShippingThreshold,omitempty"`
	FreeShippingScope     FreeShippingScope `json:"freeShippingScope,omitempty"`
	TierThreePercent      decimal.Decimal   `json:"tier3Percent"`
	TierFivePercent       decimal.Decimal   `json:"tier5Percent"`
	TierTenPercent        decimal.Decimal   `json:"tier10Percent"`
	PrepCharge            decimal.Decimal   `json:"prepCharge"`
	AllowsHubPickup       bool              `json:"allowsHubPickup"`
	PickupDiscountPercent decimal.Decimal   `json:"pickupDiscountPercent"`
}

// Snapshot is the consistent view of directory and rate-card configuration
// for one quote call. The engine treats it as immutable.
type Snapshot struct {
	Vendors   map[uuid.UUID]Vendor        `json:"vendors"`
	Alliances map[uuid.UUID]Alliance      `json:"alliances"`
	Hubs      map[uuid.UUID]Hub           `json:"hubs"`
	Weights   map[Scope][]CategoryWeight  `json:"weights"`
	Tariffs   map[Scope][]Tariff          `json:"tariffs"`
	Rules     map[Scope]ShippingRules     `json:"rules"`
}

// WeightFor returns the weight row for a category under a scope.
func (s *Snapshot) WeightFor(scope Scope, categoryID uuid.UUID) (CategoryWeight, bool) {
	for _, w := range s.Weights[scope] {
		if w.CategoryID == categoryID {
			return w, true
		}
	}
	return CategoryWeight{}, false
}

// RulesFor returns the shipping rules for a scope, falling back to the safe
// zero value when the scope never configured any.
func (s *Snapshot) RulesFor(scope Scope) ShippingRules {
	if r, ok := s.Rules[scope]; ok {
		return r
	}
	return ShippingRules{Scope: scope}
}

// HasVendorConfig reports whether vendor-level rows exist for the given
// vendor. It is the fallback check used when an alliance is inactive.
func (s *Snapshot) HasVendorConfig(vendorID uuid.UUID) bool {
	scope := VendorScope(vendorID)
	if _, ok := s.Rules[scope]; ok {
		return true
	}
	if len(s.Tariffs[scope]) > 0 {
		return true
	}
	return len(s.Weights[scope]) > 0
}
