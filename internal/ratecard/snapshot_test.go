package ratecard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

func ptr[T any](v T) *T { return &v }

func baseRowSet() rowSet {
	hubID := uuid.New()
	allianceID := uuid.New()
	vendorID := uuid.New()
	return rowSet{
		Hubs:      []hubRow{{ID: hubID, Province: "Jawa Barat", City: "Bandung", Address: "Jl. Braga 1"}},
		Alliances: []allianceRow{{ID: allianceID, HubID: hubID, Active: true}},
		Vendors:   []vendorRow{{ID: vendorID, HubID: hubID, AllianceID: &allianceID}},
		Weights: []weightRow{{
			ID:            uuid.New(),
			AllianceID:    &allianceID,
			CategoryID:    uuid.New(),
			BaseKg:        "0.25",
			IncrementalKg: "0.20",
		}},
		Tariffs: []tariffRow{{
			ID:              uuid.New(),
			AllianceID:      &allianceID,
			Province:        "Jawa Tengah",
			BasePrice:       "5.50",
			IncludedKg:      "1.0",
			PricePerExtraKg: "1.20",
			EstimatedDays:   3,
		}},
		Rules: []rulesRow{{
			ID:                    uuid.New(),
			AllianceID:            &allianceID,
			FreeShippingScope:     "all",
			TierThreePercent:      "10",
			TierFivePercent:       "0",
			TierTenPercent:        "0",
			PrepCharge:            "0.50",
			PickupDiscountPercent: "0",
		}},
	}
}

func TestBuildSnapshotHappyPath(t *testing.T) {
	t.Parallel()

	set := baseRowSet()
	snap, err := buildSnapshot(set)
	require.NoError(t, err)

	allianceScope := quote.AllianceScope(set.Alliances[0].ID)
	require.Len(t, snap.Weights[allianceScope], 1)
	require.Len(t, snap.Tariffs[allianceScope], 1)
	rules := snap.RulesFor(allianceScope)
	require.True(t, rules.TierThreePercent.Equal(dec("10")))
	require.True(t, rules.PrepCharge.Equal(dec("0.50")))
	require.Equal(t, quote.FreeScopeAll, rules.FreeShippingScope)
}

func TestBuildSnapshotRejectsDualOwner(t *testing.T) {
	t.Parallel()

	set := baseRowSet()
	set.Weights[0].VendorID = ptr(set.Vendors[0].ID)

	_, err := buildSnapshot(set)
	require.Error(t, err)
	var malformed *quote.MalformedConfigError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "category_weights", malformed.Table)
}

func TestBuildSnapshotRejectsOwnerlessRow(t *testing.T) {
	t.Parallel()

	set := baseRowSet()
	set.Tariffs[0].AllianceID = nil

	_, err := buildSnapshot(set)
	var malformed *quote.MalformedConfigError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "tariffs", malformed.Table)
}

func TestBuildSnapshotRejectsDivergentMemberHub(t *testing.T) {
	t.Parallel()

	set := baseRowSet()
	otherHub := uuid.New()
	set.Hubs = append(set.Hubs, hubRow{ID: otherHub, Province: "Bali", City: "Denpasar"})
	set.Vendors[0].HubID = otherHub

	_, err := buildSnapshot(set)
	var malformed *quote.MalformedConfigError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "vendors", malformed.Table)
	require.Equal(t, set.Vendors[0].ID, malformed.RowID)
}

func TestBuildSnapshotRejectsDuplicateDestination(t *testing.T) {
	t.Parallel()

	set := baseRowSet()
	dupe := set.Tariffs[0]
	dupe.ID = uuid.New()
	dupe.Province = " jawa tengah " // same destination after normalisation
	set.Tariffs = append(set.Tariffs, dupe)

	_, err := buildSnapshot(set)
	var malformed *quote.MalformedConfigError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "tariffs", malformed.Table)
	require.Equal(t, dupe.ID, malformed.RowID)
}

func TestBuildSnapshotRejectsDuplicateRules(t *testing.T) {
	t.Parallel()

	set := baseRowSet()
	dupe := set.Rules[0]
	dupe.ID = uuid.New()
	set.Rules = append(set.Rules, dupe)

	_, err := buildSnapshot(set)
	var malformed *quote.MalformedConfigError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "shipping_rules", malformed.Table)
}

func TestBuildSnapshotRejectsBadDecimalAndScope(t *testing.T) {
	t.Parallel()

	set := baseRowSet()
	set.Weights[0].BaseKg = "heavy"
	_, err := buildSnapshot(set)
	require.Equal(t, "MALFORMED_CONFIG_ROW", quote.ErrorCode(err))

	set = baseRowSet()
	set.Rules[0].FreeShippingScope = "same_planet"
	_, err = buildSnapshot(set)
	require.Equal(t, "MALFORMED_CONFIG_ROW", quote.ErrorCode(err))

	set = baseRowSet()
	set.Rules[0].PickupDiscountPercent = "150"
	_, err = buildSnapshot(set)
	require.Equal(t, "MALFORMED_CONFIG_ROW", quote.ErrorCode(err))
}
