package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

type storeKey struct{}

// NewContext binds s to the scope carried by ctx.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store bound to ctx, or ErrNoScope.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNoScope
	}
	return s, nil
}

// MustFromContext is like FromContext but panics with ErrNoScope.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}

// Use applies sel to the store bound to ctx. It panics outside a cart scope.
func Use[T any](ctx context.Context, sel Selector[T]) T {
	return Read(MustFromContext(ctx), sel)
}

// UseItems returns the scoped cart's line items.
func UseItems(ctx context.Context) []Item { return Use(ctx, SelectItems) }

// UseIsOpen returns the scoped cart's panel flag.
func UseIsOpen(ctx context.Context) bool { return Use(ctx, SelectIsOpen) }

// UseTotalItems returns the scoped cart's unit count.
func UseTotalItems(ctx context.Context) int { return Use(ctx, SelectTotalItems) }

// UseTotalPrice returns the scoped cart's value.
func UseTotalPrice(ctx context.Context) decimal.Decimal { return Use(ctx, SelectTotalPrice) }

// UseItem looks up productID in the scoped cart.
func UseItem(ctx context.Context, productID string) (Item, bool) {
	l := Use(ctx, SelectItem(productID))
	return l.Item, l.Found
}

// Actions is the mutation surface of one store.
type Actions struct {
	AddItem        func(AddInput) bool
	RemoveItem     func(productID string) bool
	UpdateQuantity func(productID string, quantity int) bool
	ClearCart      func() bool
	ToggleCart     func() bool
	OpenCart       func() bool
	CloseCart      func() bool
}

// UseActions returns the mutation surface of the scoped cart.
func UseActions(ctx context.Context) Actions {
	s := MustFromContext(ctx)
	return Actions{
		AddItem:        s.AddItem,
		RemoveItem:     s.RemoveItem,
		UpdateQuantity: s.UpdateQuantity,
		ClearCart:      s.ClearCart,
		ToggleCart:     s.ToggleCart,
		OpenCart:       s.OpenCart,
		CloseCart:      s.CloseCart,
	}
}
