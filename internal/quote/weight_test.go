package quote_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

func TestGroupWeightBasePlusIncrements(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)
	categoryID := uuid.New()
	b.weight(scope, categoryID, "0.25", "0.20")

	// 4 units: 0.25 + 3x0.20 = 0.85.
	weight, err := quote.GroupWeight(b.snap, scope, []quote.LineItem{item(vendorID, categoryID, 4, "10.00")})
	require.NoError(t, err)
	require.True(t, weight.Equal(dec("0.85")), "got %s", weight)
}

func TestGroupWeightPoolsSameCategoryAcrossLines(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)
	categoryID := uuid.New()
	b.weight(scope, categoryID, "1.00", "0.10")

	// Two lines of the same category pay the base weight once.
	weight, err := quote.GroupWeight(b.snap, scope, []quote.LineItem{
		item(vendorID, categoryID, 2, "5.00"),
		item(vendorID, categoryID, 3, "7.00"),
	})
	require.NoError(t, err)
	require.True(t, weight.Equal(dec("1.40")), "got %s", weight)
}

func TestGroupWeightMissingConfigFails(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)
	categoryID := uuid.New()

	_, err := quote.GroupWeight(b.snap, scope, []quote.LineItem{item(vendorID, categoryID, 1, "10.00")})
	require.Error(t, err)
	require.Equal(t, "MISSING_WEIGHT_CONFIG", quote.ErrorCode(err))

	var weightErr *quote.MissingWeightConfigError
	require.ErrorAs(t, err, &weightErr)
	require.Equal(t, categoryID, weightErr.CategoryID)
	require.Equal(t, scope, weightErr.Scope)
}

func TestGroupWeightMonotonicInQuantity(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)
	categoryID := uuid.New()
	b.weight(scope, categoryID, "0.30", "0.15")

	previous := dec("0")
	for qty := int32(1); qty <= 50; qty++ {
		weight, err := quote.GroupWeight(b.snap, scope, []quote.LineItem{item(vendorID, categoryID, qty, "1.00")})
		require.NoError(t, err, fmt.Sprintf("qty %d", qty))
		require.True(t, weight.GreaterThanOrEqual(previous), "weight decreased at qty %d: %s < %s", qty, weight, previous)
		previous = weight
	}
}
