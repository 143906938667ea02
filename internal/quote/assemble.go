package quote

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// moneyScale is the fraction-digit count of every price leaving the engine.
// Intermediate stage values are never rounded; only assembled output is.
const moneyScale = 2

// Request is one quoting call over an immutable snapshot.
type Request struct {
	Cart            CartSnapshot `json:"cart"`
	Destination     Destination  `json:"destination"`
	PickupRequested bool         `json:"pickupRequested"`
}

// ShipmentQuote is the priced outcome for one shipment group.
type ShipmentQuote struct {
	Scope         Scope             `json:"scope"`
	Hub           Hub               `json:"hub"`
	ItemCount     int64             `json:"itemCount"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	WeightKg      decimal.Decimal   `json:"weightKg"`
	Tariff        Tariff            `json:"tariff"`
	BaseCost      decimal.Decimal   `json:"baseCost"`
	Discounts     []AppliedDiscount `json:"discounts"`
	PrepCharge    decimal.Decimal   `json:"prepCharge"`
	FinalPrice    decimal.Decimal   `json:"finalPrice"`
	EstimatedDays int32             `json:"estimatedDays"`
}

// OrderShippingQuote aggregates every shipment of the order.
type OrderShippingQuote struct {
	Shipments        []ShipmentQuote `json:"shipments"`
	Total            decimal.Decimal `json:"total"`
	MaxEstimatedDays int32           `json:"maxEstimatedDays"`
}

// Assemble computes the full order quote: partition the cart, then weigh,
// route and price each group. Any failure aborts the whole quote; a partial
// shipping price is worse than an explicit error.
func Assemble(snap *Snapshot, req Request) (OrderShippingQuote, error) {
	groups, err := Partition(snap, req.Cart)
	if err != nil {
		return OrderShippingQuote{}, err
	}

	out := OrderShippingQuote{Shipments: make([]ShipmentQuote, 0, len(groups)), Total: decimal.Zero}
	for _, group := range groups {
		shipment, err := quoteGroup(snap, group, req)
		if err != nil {
			return OrderShippingQuote{}, err
		}
		out.Shipments = append(out.Shipments, shipment)
		out.Total = out.Total.Add(shipment.FinalPrice)
		if shipment.EstimatedDays > out.MaxEstimatedDays {
			out.MaxEstimatedDays = shipment.EstimatedDays
		}
	}
	return out, nil
}

func quoteGroup(snap *Snapshot, group ShipmentGroup, req Request) (ShipmentQuote, error) {
	weight, err := GroupWeight(snap, group.Scope, group.Items)
	if err != nil {
		return ShipmentQuote{}, err
	}
	tariff, err := ResolveTariff(snap, group.Scope, req.Destination)
	if err != nil {
		return ShipmentQuote{}, err
	}

	subtotal := decimal.Zero
	var quantity int64
	for _, item := range group.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
		quantity += int64(item.Quantity)
	}

	priced := PriceShipment(PricingInput{
		Tariff:          tariff,
		Rules:           snap.RulesFor(group.Scope),
		Hub:             snap.Hubs[group.HubID],
		Destination:     req.Destination,
		WeightKg:        weight,
		Subtotal:        subtotal,
		TotalQuantity:   quantity,
		PickupRequested: req.PickupRequested,
	})

	discounts := make([]AppliedDiscount, 0, len(priced.Trail))
	for _, d := range priced.Trail {
		d.Amount = d.Amount.Round(moneyScale)
		discounts = append(discounts, d)
	}

	return ShipmentQuote{
		Scope:         group.Scope,
		Hub:           snap.Hubs[group.HubID],
		ItemCount:     quantity,
		Subtotal:      subtotal.Round(moneyScale),
		WeightKg:      weight,
		Tariff:        tariff,
		BaseCost:      priced.BaseCost.Round(moneyScale),
		Discounts:     discounts,
		PrepCharge:    priced.PrepCharge.Round(moneyScale),
		FinalPrice:    priced.Final.Round(moneyScale),
		EstimatedDays: tariff.EstimatedDays,
	}, nil
}

// ValidateCart rejects malformed line items before the engine runs.
func ValidateCart(cart CartSnapshot) error {
	if len(cart.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range cart.Items {
		if item.Quantity < 1 {
			return &CartItemError{ProductID: item.ProductID, Field: "quantity", Hint: "must be at least 1"}
		}
		if item.UnitPrice.Sign() < 0 {
			return &CartItemError{ProductID: item.ProductID, Field: "unitPrice", Hint: "must not be negative"}
		}
		if item.VendorID == uuid.Nil {
			return &CartItemError{ProductID: item.ProductID, Field: "vendorId", Hint: "is required"}
		}
		if item.CategoryID == uuid.Nil {
			return &CartItemError{ProductID: item.ProductID, Field: "categoryId", Hint: "is required"}
		}
	}
	return nil
}
