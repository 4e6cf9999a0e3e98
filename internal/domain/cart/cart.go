// Package cart implements the client-side shopping cart: an observable store of
// line items plus the visibility flag of the cart panel, the scope accessor that
// hands one store to everything running inside a scope, and the registry that
// owns one store per scope.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoScope is returned when a store is requested outside of an
	// initialized cart scope. It signals a wiring mistake, not an empty cart.
	ErrNoScope = errors.New("cart store requested outside of a cart scope")
	// ErrInvalidSnapshot is returned when an initial state violates the
	// cart invariants.
	ErrInvalidSnapshot = errors.New("invalid cart snapshot")
	// ErrScopeLimit is returned when a new scope would exceed the registry
	// capacity.
	ErrScopeLimit = errors.New("cart scope limit reached")
)

// Item is a single line item in the cart.
type Item struct {
	ProductID string
	// Name and Price are snapshots taken when the item was first added.
	Name     string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// LineTotal returns Price × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is the full cart state.
type State struct {
	Items  []Item
	IsOpen bool
}

// Validate reports whether s satisfies the cart invariants: non-empty unique
// product ids, quantities of at least one and non-negative prices.
func (s State) Validate() error {
	seen := make(map[string]struct{}, len(s.Items))
	for i, item := range s.Items {
		if item.ProductID == "" {
			return errors.Wrapf(ErrInvalidSnapshot, "item %d: empty product id", i)
		}
		if _, dup := seen[item.ProductID]; dup {
			return errors.Wrapf(ErrInvalidSnapshot, "item %d: duplicate product %s", i, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
		if item.Quantity < 1 {
			return errors.Wrapf(ErrInvalidSnapshot, "item %d: quantity %d below 1", i, item.Quantity)
		}
		if item.Price.IsNegative() {
			return errors.Wrapf(ErrInvalidSnapshot, "item %d: negative price %s", i, item.Price)
		}
	}
	return nil
}

// clone returns a copy of s whose item slice does not alias s.
func (s State) clone() State {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return State{Items: items, IsOpen: s.IsOpen}
}

// indexOf returns the position of productID in s.Items, or -1.
func (s State) indexOf(productID string) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddInput describes a product being added to the cart.
type AddInput struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Image     string
	// Stock bounds the line item quantity. Nil or negative means unbounded.
	Stock *int
}

// WithStock returns a copy of in bounded by stock.
func (in AddInput) WithStock(stock int) AddInput {
	in.Stock = &stock
	return in
}

func (in AddInput) stockLimit() (int, bool) {
	if in.Stock == nil || *in.Stock < 0 {
		return 0, false
	}
	return *in.Stock, true
}
