package quote

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupWeight computes the physical weight of one shipment group. Quantities
// of the same category are pooled first, so the base weight is paid once per
// category per shipment regardless of how many cart lines reference it.
func GroupWeight(snap *Snapshot, scope Scope, items []LineItem) (decimal.Decimal, error) {
	quantities := make(map[uuid.UUID]int64)
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if _, seen := quantities[item.CategoryID]; !seen {
			order = append(order, item.CategoryID)
		}
		quantities[item.CategoryID] += int64(item.Quantity)
	}

	total := decimal.Zero
	for _, categoryID := range order {
		row, ok := snap.WeightFor(scope, categoryID)
		if !ok {
			return decimal.Zero, &MissingWeightConfigError{Scope: scope, CategoryID: categoryID}
		}
		qty := quantities[categoryID]
		contribution := row.BaseKg.Add(row.IncrementalKg.Mul(decimal.NewFromInt(qty - 1)))
		total = total.Add(contribution)
	}
	return total, nil
}
