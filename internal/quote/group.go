package quote

import "github.com/google/uuid"

// ShipmentGroup is the set of cart lines physically shipped together under
// one configuration scope.
type ShipmentGroup struct {
	Scope Scope
	HubID uuid.UUID
	Items []LineItem
}

// Partition splits the cart into shipment groups. Lines whose vendors
// resolve to the same alliance scope consolidate into one group even across
// vendors; every unaffiliated vendor forms a group of its own. Groups appear
// in first-occurrence order of their scope within the cart, and every line
// lands in exactly one group.
func Partition(snap *Snapshot, cart CartSnapshot) ([]ShipmentGroup, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	index := make(map[Scope]int)
	groups := make([]ShipmentGroup, 0)
	for _, item := range cart.Items {
		scope, err := ResolveScope(snap, item.VendorID)
		if err != nil {
			return nil, err
		}
		i, ok := index[scope]
		if !ok {
			hubID, err := groupHub(snap, scope, item.VendorID)
			if err != nil {
				return nil, err
			}
			i = len(groups)
			index[scope] = i
			groups = append(groups, ShipmentGroup{Scope: scope, HubID: hubID})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups, nil
}

// groupHub finds the consolidation hub for a resolved scope. Alliance groups
// ship from the alliance hub, solo vendors from their own.
func groupHub(snap *Snapshot, scope Scope, vendorID uuid.UUID) (uuid.UUID, error) {
	if scope.Kind == ScopeAlliance {
		alliance, ok := snap.Alliances[scope.ID]
		if !ok {
			return uuid.Nil, &InvalidScopeStateError{VendorID: vendorID, Reason: "alliance not in directory"}
		}
		return alliance.HubID, nil
	}
	vendor, ok := snap.Vendors[scope.ID]
	if !ok {
		return uuid.Nil, &InvalidScopeStateError{VendorID: vendorID, Reason: "vendor not in directory"}
	}
	return vendor.HubID, nil
}
