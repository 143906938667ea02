package quote

import "github.com/shopspring/decimal"

// DiscountStage names the discount stages in their fixed precedence order.
type DiscountStage string

const (
	StageVolumeTier   DiscountStage = "volume_tier"
	StageFreeShipping DiscountStage = "free_shipping"
	StageHubPickup    DiscountStage = "hub_pickup"
)

// AppliedDiscount records one stage that fired and how much it took off.
type AppliedDiscount struct {
	Stage  DiscountStage   `json:"stage"`
	Detail string          `json:"detail,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// PricingInput carries everything the discount pipeline needs for one
// shipment group.
type PricingInput struct {
	Tariff          Tariff
	Rules           ShippingRules
	Hub             Hub
	Destination     Destination
	WeightKg        decimal.Decimal
	Subtotal        decimal.Decimal
	TotalQuantity   int64
	PickupRequested bool
}

// PricingResult is the staged outcome for one shipment. Values stay at full
// precision; rounding happens when the quote is assembled for output.
type PricingResult struct {
	BaseCost   decimal.Decimal
	Trail      []AppliedDiscount
	PrepCharge decimal.Decimal
	Final      decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// PriceShipment runs the fixed discount pipeline:
//
//  1. base cost from the matched tariff and the shipment weight
//  2. volume-tier discount for the highest qualifying tier
//  3. free-shipping override, replacing the volume result outright
//  4. hub-pickup override, recomputed from the post-volume value; pickup is
//     the buyer's explicit choice and wins over free home delivery
//  5. prep charge, added last and never discounted
func PriceShipment(in PricingInput) PricingResult {
	base := baseCost(in.Tariff, in.WeightKg)
	result := PricingResult{BaseCost: base, PrepCharge: in.Rules.PrepCharge}

	afterVolume := base
	if percent, detail, ok := volumeTier(in.Rules, in.TotalQuantity); ok {
		afterVolume = base.Mul(hundred.Sub(percent)).Div(hundred)
		result.Trail = append(result.Trail, AppliedDiscount{
			Stage:  StageVolumeTier,
			Detail: detail,
			Amount: base.Sub(afterVolume),
		})
	}

	final := afterVolume
	switch {
	case in.PickupRequested && in.Rules.AllowsHubPickup:
		final = afterVolume.Mul(hundred.Sub(in.Rules.PickupDiscountPercent)).Div(hundred)
		result.Trail = append(result.Trail, AppliedDiscount{
			Stage:  StageHubPickup,
			Amount: afterVolume.Sub(final),
		})
	case freeShippingApplies(in):
		// Free shipping replaces the volume result rather than stacking.
		final = decimal.Zero
		result.Trail = []AppliedDiscount{{
			Stage:  StageFreeShipping,
			Amount: base,
		}}
	}

	result.Final = final.Add(in.Rules.PrepCharge)
	return result
}

// baseCost is basePrice plus the per-kg rate on weight above the included
// allowance.
func baseCost(t Tariff, weightKg decimal.Decimal) decimal.Decimal {
	extra := weightKg.Sub(t.IncludedKg)
	if extra.Sign() <= 0 {
		return t.BasePrice
	}
	return t.BasePrice.Add(extra.Mul(t.PricePerExtraKg))
}

// volumeTier picks the highest qualifying tier, checking 10+ before 5+
// before 3+.
func volumeTier(rules ShippingRules, quantity int64) (decimal.Decimal, string, bool) {
	switch {
	case quantity >= 10 && rules.TierTenPercent.Sign() > 0:
		return rules.TierTenPercent, "10+", true
	case quantity >= 5 && rules.TierFivePercent.Sign() > 0:
		return rules.TierFivePercent, "5+", true
	case quantity >= 3 && rules.TierThreePercent.Sign() > 0:
		return rules.TierThreePercent, "3+", true
	default:
		return decimal.Zero, "", false
	}
}

// freeShippingApplies checks the threshold and the destination against the
// configured free-shipping scope relative to the shipment's hub.
func freeShippingApplies(in PricingInput) bool {
	threshold := in.Rules.FreeShippingThreshold
	if threshold == nil || in.Subtotal.LessThan(*threshold) {
		return false
	}
	switch in.Rules.FreeShippingScope {
	case FreeScopeAll, "":
		return true
	case FreeScopeSameProvince:
		return placeEqual(in.Destination.Province, in.Hub.Province)
	case FreeScopeSameCity:
		return placeEqual(in.Destination.Province, in.Hub.Province) &&
			in.Destination.City != "" && placeEqual(in.Destination.City, in.Hub.City)
	default:
		return false
	}
}
