package quote

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ScopeKind discriminates who owns a configuration row.
type ScopeKind string

const (
	// ScopeAlliance marks configuration owned by a vendor alliance.
	ScopeAlliance ScopeKind = "alliance"
	// ScopeVendor marks configuration owned by a standalone vendor.
	ScopeVendor ScopeKind = "vendor"
)

// Scope identifies the configuration owner governing a shipment: exactly one
// alliance or exactly one vendor. Rows that set both or neither owner are
// rejected when the snapshot is loaded, so code past that point can rely on
// the union being well formed.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// AllianceScope builds an alliance-owned scope.
func AllianceScope(id uuid.UUID) Scope { return Scope{Kind: ScopeAlliance, ID: id} }

// VendorScope builds a vendor-owned scope.
func VendorScope(id uuid.UUID) Scope { return Scope{Kind: ScopeVendor, ID: id} }

// String renders the scope as "alliance:<uuid>" or "vendor:<uuid>".
func (s Scope) String() string {
	return string(s.Kind) + ":" + s.ID.String()
}

// MarshalText lets Scope act as a JSON object key.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the "kind:uuid" form produced by MarshalText.
func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScope parses "alliance:<uuid>" / "vendor:<uuid>".
func ParseScope(value string) (Scope, error) {
	kind, rawID, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found {
		return Scope{}, fmt.Errorf("scope %q: missing kind separator", value)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Scope{}, fmt.Errorf("scope %q: %w", value, err)
	}
	switch ScopeKind(kind) {
	case ScopeAlliance:
		return AllianceScope(id), nil
	case ScopeVendor:
		return VendorScope(id), nil
	default:
		return Scope{}, fmt.Errorf("scope %q: unknown kind %q", value, kind)
	}
}

// ResolveScope decides which configuration owner governs a vendor's
// shipments. A vendor belonging to an active alliance is governed by the
// alliance. When the alliance is inactive or missing, the vendor's own rows
// are the fallback; if none exist the vendor cannot be quoted at all.
func ResolveScope(snap *Snapshot, vendorID uuid.UUID) (Scope, error) {
	vendor, ok := snap.Vendors[vendorID]
	if !ok {
		return Scope{}, &InvalidScopeStateError{VendorID: vendorID, Reason: "vendor not in directory"}
	}
	if vendor.AllianceID == nil {
		return VendorScope(vendorID), nil
	}
	alliance, ok := snap.Alliances[*vendor.AllianceID]
	if ok && alliance.Active {
		return AllianceScope(alliance.ID), nil
	}
	if !snap.HasVendorConfig(vendorID) {
		reason := "alliance inactive and no vendor-level fallback configured"
		if !ok {
			reason = "alliance not in directory and no vendor-level fallback configured"
		}
		return Scope{}, &InvalidScopeStateError{VendorID: vendorID, Reason: reason}
	}
	return VendorScope(vendorID), nil
}
