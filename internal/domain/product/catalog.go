package product

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

const (
	bloomMinCapacity = 1024
	bloomFPR         = 0.001
)

var _ Repository = (*Catalog)(nil)

// Catalog serves product lookups from a Repository and keeps a bloom filter
// of every known product id and slug, so lookups for products that were
// never in the catalog do not reach the database.
//
// Products added to the store after the last Refresh are invisible to
// GetByID and GetBySlug until the next Refresh.
type Catalog struct {
	repo Repository

	mu    sync.RWMutex
	known *bloom.BloomFilter
	size  int
}

// NewCatalog wraps repo. Until the first Refresh every lookup goes to repo.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Refresh rebuilds the filter from the full product list.
func (c *Catalog) Refresh(ctx context.Context) error {
	products, err := c.repo.List(ctx, Filter{})
	if err != nil {
		return errors.Wrap(err, "list products")
	}

	capacity := uint(2 * len(products))
	if capacity < bloomMinCapacity {
		capacity = bloomMinCapacity
	}
	filter := bloom.NewWithEstimates(capacity, bloomFPR)
	for _, p := range products {
		filter.AddString(idKey(p.ID))
		if p.Slug != "" {
			filter.AddString(slugKey(p.Slug))
		}
	}

	c.mu.Lock()
	c.known = filter
	c.size = len(products)
	c.mu.Unlock()
	return nil
}

// Size returns the number of products indexed by the last Refresh.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

func (c *Catalog) mayContain(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.known == nil {
		return true
	}
	return c.known.TestString(key)
}

// List returns products matching filter.
func (c *Catalog) List(ctx context.Context, filter Filter) ([]Product, error) {
	return c.repo.List(ctx, filter)
}

// ListCategories returns every category.
func (c *Catalog) ListCategories(ctx context.Context) ([]Category, error) {
	return c.repo.ListCategories(ctx)
}

// GetBySlug returns the product with the given slug.
func (c *Catalog) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	if slug == "" || !c.mayContain(slugKey(slug)) {
		return nil, &NotFoundError{Key: slug}
	}
	return c.repo.GetBySlug(ctx, slug)
}

// GetByID returns the product with the given id.
func (c *Catalog) GetByID(ctx context.Context, id string) (*Product, error) {
	if id == "" || !c.mayContain(idKey(id)) {
		return nil, &NotFoundError{Key: id}
	}
	return c.repo.GetByID(ctx, id)
}

// GetByIDs returns the products among ids that exist. Ids the filter rules
// out are dropped before querying.
func (c *Catalog) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	candidates := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && c.mayContain(idKey(id)) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return c.repo.GetByIDs(ctx, candidates)
}

func idKey(id string) string     { return "id:" + id }
func slugKey(slug string) string { return "slug:" + slug }
