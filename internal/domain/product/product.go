package product

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// NotFoundError identifies the product that could not be found.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.Key)
}

// Is reports ErrNotFound as equivalent.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Category groups products for browsing.
type Category struct {
	Slug  string
	Title string
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    *Category
	// Images holds image URLs in display order.
	Images []string

	// Optional details. Empty strings and nil pointers mean unset.
	Material         string
	Color            string
	Dimensions       string
	AssemblyRequired *bool
	Featured         *bool
}

// FirstImage returns the primary image URL, or "" when the product has none.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Filter narrows a product listing.
type Filter struct {
	// CategorySlug limits results to one category when set.
	CategorySlug string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
