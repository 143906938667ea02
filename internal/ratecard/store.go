package ratecard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwiky-labs/ongkir-api/internal/quote"
)

// Store reads directory and rate-card rows from Postgres. Every Load builds
// one consistent snapshot inside a repeatable-read transaction so a quote
// never sees half of an admin update.
type Store struct {
	Pool *pgxpool.Pool
}

// Load fetches everything the engine needs to quote the given vendors:
// the vendors themselves, their alliances, the hubs both point at, and all
// weight/tariff/rules rows owned by either scope. Integrity violations are
// rejected here so the engine can trust the snapshot.
func (s *Store) Load(ctx context.Context, vendorIDs []uuid.UUID) (*quote.Snapshot, error) {
	if s.Pool == nil {
		return nil, errors.New("ratecard store not configured")
	}
	if len(vendorIDs) == 0 {
		return nil, errors.New("no vendors to load")
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := s.loadRows(ctx, tx, vendorIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return buildSnapshot(rows)
}

// rowSet carries raw rows between the SQL layer and snapshot assembly, so
// integrity validation stays a pure function.
type rowSet struct {
	Vendors   []vendorRow
	Alliances []allianceRow
	Hubs      []hubRow
	Weights   []weightRow
	Tariffs   []tariffRow
	Rules     []rulesRow
}

type vendorRow struct {
	ID         uuid.UUID
	HubID      uuid.UUID
	AllianceID *uuid.UUID
}

type allianceRow struct {
	ID     uuid.UUID
	HubID  uuid.UUID
	Active bool
}

type hubRow struct {
	ID       uuid.UUID
	Province string
	City     string
	Address  string
}

type weightRow struct {
	ID            uuid.UUID
	AllianceID    *uuid.UUID
	VendorID      *uuid.UUID
	CategoryID    uuid.UUID
	BaseKg        string
	IncrementalKg string
}

type tariffRow struct {
	ID              uuid.UUID
	AllianceID      *uuid.UUID
	VendorID        *uuid.UUID
	Province        string
	City            *string
	BasePrice       string
	IncludedKg      string
	PricePerExtraKg string
	EstimatedDays   int32
}

type rulesRow struct {
	ID                    uuid.UUID
	AllianceID            *uuid.UUID
	VendorID              *uuid.UUID
	FreeShippingThreshold *string
	FreeShippingScope     string
	TierThreePercent      string
	TierFivePercent       string
	TierTenPercent        string
	PrepCharge            string
	AllowsHubPickup       bool
	PickupDiscountPercent string
}

// querier is satisfied by both pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// loadScopeRows builds a snapshot holding only the configuration rows of the
// given owners, used by the admin listing endpoint.
func (s *Store) loadScopeRows(ctx context.Context, vendorIDs, allianceIDs []uuid.UUID) (*quote.Snapshot, error) {
	if s.Pool == nil {
		return nil, errors.New("ratecard store not configured")
	}
	var set rowSet
	if err := s.loadConfigRows(ctx, s.Pool, vendorIDs, allianceIDs, &set); err != nil {
		return nil, err
	}
	return buildSnapshot(set)
}

func (s *Store) loadRows(ctx context.Context, tx pgx.Tx, vendorIDs []uuid.UUID) (rowSet, error) {
	var set rowSet

	rows, err := tx.Query(ctx, `SELECT id, hub_id, alliance_id FROM vendors WHERE id = ANY($1)`, vendorIDs)
	if err != nil {
		return set, fmt.Errorf("load vendors: %w", err)
	}
	set.Vendors, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (vendorRow, error) {
		var v vendorRow
		err := row.Scan(&v.ID, &v.HubID, &v.AllianceID)
		return v, err
	})
	if err != nil {
		return set, fmt.Errorf("scan vendors: %w", err)
	}

	allianceIDs := make([]uuid.UUID, 0, len(set.Vendors))
	hubIDs := make([]uuid.UUID, 0, len(set.Vendors))
	for _, v := range set.Vendors {
		hubIDs = append(hubIDs, v.HubID)
		if v.AllianceID != nil {
			allianceIDs = append(allianceIDs, *v.AllianceID)
		}
	}

	if len(allianceIDs) > 0 {
		rows, err = tx.Query(ctx, `SELECT id, hub_id, active FROM alliances WHERE id = ANY($1)`, allianceIDs)
		if err != nil {
			return set, fmt.Errorf("load alliances: %w", err)
		}
		set.Alliances, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (allianceRow, error) {
			var a allianceRow
			err := row.Scan(&a.ID, &a.HubID, &a.Active)
			return a, err
		})
		if err != nil {
			return set, fmt.Errorf("scan alliances: %w", err)
		}
		for _, a := range set.Alliances {
			hubIDs = append(hubIDs, a.HubID)
		}
	}

	rows, err = tx.Query(ctx, `SELECT id, province, city, address FROM hubs WHERE id = ANY($1)`, hubIDs)
	if err != nil {
		return set, fmt.Errorf("load hubs: %w", err)
	}
	set.Hubs, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (hubRow, error) {
		var h hubRow
		err := row.Scan(&h.ID, &h.Province, &h.City, &h.Address)
		return h, err
	})
	if err != nil {
		return set, fmt.Errorf("scan hubs: %w", err)
	}

	if err := s.loadConfigRows(ctx, tx, vendorIDs, allianceIDs, &set); err != nil {
		return set, err
	}
	return set, nil
}

func (s *Store) loadConfigRows(ctx context.Context, q querier, vendorIDs, allianceIDs []uuid.UUID, set *rowSet) error {
	// Numeric columns come back as text so decimal parsing owns the precision.
	rows, err := q.Query(ctx, `
		SELECT id, alliance_id, vendor_id, category_id, base_weight_kg::text, incremental_weight_kg::text
		FROM category_weights
		WHERE vendor_id = ANY($1) OR alliance_id = ANY($2)`, vendorIDs, allianceIDs)
	if err != nil {
		return fmt.Errorf("load category weights: %w", err)
	}
	set.Weights, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (weightRow, error) {
		var w weightRow
		err := row.Scan(&w.ID, &w.AllianceID, &w.VendorID, &w.CategoryID, &w.BaseKg, &w.IncrementalKg)
		return w, err
	})
	if err != nil {
		return fmt.Errorf("scan category weights: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT id, alliance_id, vendor_id, province, city, base_price::text, included_weight_kg::text,
		       price_per_extra_kg::text, estimated_days
		FROM tariffs
		WHERE vendor_id = ANY($1) OR alliance_id = ANY($2)`, vendorIDs, allianceIDs)
	if err != nil {
		return fmt.Errorf("load tariffs: %w", err)
	}
	set.Tariffs, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (tariffRow, error) {
		var t tariffRow
		err := row.Scan(&t.ID, &t.AllianceID, &t.VendorID, &t.Province, &t.City, &t.BasePrice,
			&t.IncludedKg, &t.PricePerExtraKg, &t.EstimatedDays)
		return t, err
	})
	if err != nil {
		return fmt.Errorf("scan tariffs: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT id, alliance_id, vendor_id, free_shipping_threshold::text, free_shipping_scope,
		       tier3_percent::text, tier5_percent::text, tier10_percent::text,
		       prep_charge::text, allows_hub_pickup, pickup_discount_percent::text
		FROM shipping_rules
		WHERE vendor_id = ANY($1) OR alliance_id = ANY($2)`, vendorIDs, allianceIDs)
	if err != nil {
		return fmt.Errorf("load shipping rules: %w", err)
	}
	set.Rules, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (rulesRow, error) {
		var r rulesRow
		err := row.Scan(&r.ID, &r.AllianceID, &r.VendorID, &r.FreeShippingThreshold, &r.FreeShippingScope,
			&r.TierThreePercent, &r.TierFivePercent, &r.TierTenPercent,
			&r.PrepCharge, &r.AllowsHubPickup, &r.PickupDiscountPercent)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("scan shipping rules: %w", err)
	}

	return nil
}
