package quote

import "strings"

// ResolveTariff picks the tariff row governing a destination for a scope.
// A row matching the exact city always wins over a province-wide row; the
// snapshot loader guarantees at most one row of each kind per destination,
// so the result does not depend on row order.
func ResolveTariff(snap *Snapshot, scope Scope, dest Destination) (Tariff, error) {
	rows := snap.Tariffs[scope]

	if dest.City != "" {
		for _, row := range rows {
			if row.City != "" && placeEqual(row.Province, dest.Province) && placeEqual(row.City, dest.City) {
				return row, nil
			}
		}
	}
	for _, row := range rows {
		if row.City == "" && placeEqual(row.Province, dest.Province) {
			return row, nil
		}
	}
	return Tariff{}, &NoRouteConfiguredError{Scope: scope, Province: dest.Province, City: dest.City}
}

// placeEqual compares province/city names ignoring case and surrounding
// whitespace, so merchant-entered rows match buyer-entered destinations.
func placeEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
