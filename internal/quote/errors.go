package quote

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyCart is returned when a quote is requested for a cart with no items.
var ErrEmptyCart = errors.New("cart has no line items")

// MissingWeightConfigError reports a category present in the cart that has no
// weight row under its resolved scope. Quoting aborts instead of defaulting
// the weight to zero, which would under-price the shipment.
type MissingWeightConfigError struct {
	Scope      Scope
	CategoryID uuid.UUID
}

func (e *MissingWeightConfigError) Error() string {
	return fmt.Sprintf("no weight configured for category %s under %s", e.CategoryID, e.Scope)
}

// NoRouteConfiguredError reports that no tariff row covers the destination
// for a scope, neither city-specific nor province-wide.
type NoRouteConfiguredError struct {
	Scope    Scope
	Province string
	City     string
}

func (e *NoRouteConfiguredError) Error() string {
	if e.City != "" {
		return fmt.Sprintf("no route configured for %s, %s under %s", e.City, e.Province, e.Scope)
	}
	return fmt.Sprintf("no route configured for province %s under %s", e.Province, e.Scope)
}

// InvalidScopeStateError reports a vendor whose alliance is inactive or
// missing while no vendor-level configuration exists to fall back to.
type InvalidScopeStateError struct {
	VendorID uuid.UUID
	Reason   string
}

func (e *InvalidScopeStateError) Error() string {
	return fmt.Sprintf("vendor %s has no usable configuration scope: %s", e.VendorID, e.Reason)
}

// MalformedConfigError reports a configuration row that violates a data
// integrity invariant, such as the "exactly one of alliance/vendor owner"
// rule. It is raised when a snapshot is loaded, never deep inside the
// calculation.
type MalformedConfigError struct {
	Table  string
	RowID  uuid.UUID
	Reason string
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed %s row %s: %s", e.Table, e.RowID, e.Reason)
}

// CartItemError reports a cart line that fails basic input validation.
type CartItemError struct {
	ProductID uuid.UUID
	Field     string
	Hint      string
}

func (e *CartItemError) Error() string {
	return fmt.Sprintf("cart item %s: %s %s", e.ProductID, e.Field, e.Hint)
}

// ErrorCode maps engine errors onto the stable codes surfaced by the API.
// Unknown errors map to the empty string.
func ErrorCode(err error) string {
	var (
		missingWeight *MissingWeightConfigError
		noRoute       *NoRouteConfiguredError
		invalidScope  *InvalidScopeStateError
		cartItem      *CartItemError
		malformed     *MalformedConfigError
	)
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "EMPTY_CART"
	case errors.As(err, &cartItem):
		return "INVALID_CART_ITEM"
	case errors.As(err, &missingWeight):
		return "MISSING_WEIGHT_CONFIG"
	case errors.As(err, &noRoute):
		return "NO_ROUTE_CONFIGURED"
	case errors.As(err, &invalidScope):
		return "INVALID_SCOPE_STATE"
	case errors.As(err, &malformed):
		return "MALFORMED_CONFIG_ROW"
	default:
		return ""
	}
}
