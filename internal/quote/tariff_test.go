package quote_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

func TestResolveTariffCityBeatsProvince(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)

	// Province-wide row first so a naive first-match scan would pick it.
	provinceRow := b.tariff(scope, "Jawa Tengah", "", "9.00", "1.0", "1.50", 4)
	cityRow := b.tariff(scope, "Jawa Tengah", "Semarang", "6.00", "1.0", "1.20", 2)

	matched, err := quote.ResolveTariff(b.snap, scope, quote.Destination{Province: "Jawa Tengah", City: "Semarang"})
	require.NoError(t, err)
	require.Equal(t, cityRow, matched.ID)

	// Other cities in the province fall through to the province-wide row.
	matched, err = quote.ResolveTariff(b.snap, scope, quote.Destination{Province: "Jawa Tengah", City: "Solo"})
	require.NoError(t, err)
	require.Equal(t, provinceRow, matched.ID)
}

func TestResolveTariffProvinceWideWithoutCityRow(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)
	provinceRow := b.tariff(scope, "Sumatera Utara", "", "12.00", "2.0", "2.00", 6)

	matched, err := quote.ResolveTariff(b.snap, scope, quote.Destination{Province: "Sumatera Utara", City: "Medan"})
	require.NoError(t, err)
	require.Equal(t, provinceRow, matched.ID)
}

func TestResolveTariffNoRoute(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)
	b.tariff(scope, "Jawa Barat", "", "5.00", "1.0", "1.00", 1)

	_, err := quote.ResolveTariff(b.snap, scope, quote.Destination{Province: "Papua", City: "Jayapura"})
	require.Error(t, err)
	require.Equal(t, "NO_ROUTE_CONFIGURED", quote.ErrorCode(err))

	var routeErr *quote.NoRouteConfiguredError
	require.ErrorAs(t, err, &routeErr)
	require.Equal(t, "Papua", routeErr.Province)
	require.Equal(t, "Jayapura", routeErr.City)
}

func TestResolveTariffMatchesIgnoringCase(t *testing.T) {
	t.Parallel()

	b := newSnapshot()
	hub := b.hub("Jawa Barat", "Bandung")
	vendorID := b.vendor(hub)
	scope := quote.VendorScope(vendorID)
	cityRow := b.tariff(scope, "jawa barat", "bandung", "4.00", "1.0", "1.00", 1)

	matched, err := quote.ResolveTariff(b.snap, scope, quote.Destination{Province: " Jawa Barat ", City: "BANDUNG"})
	require.NoError(t, err)
	require.Equal(t, cityRow, matched.ID)
}
