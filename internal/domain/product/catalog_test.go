package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	products []Product
	listErr  error

	// calls counts lookups that reached the repository.
	calls int
}

func (m *mockRepo) List(_ context.Context, filter Filter) ([]Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Product
	for _, p := range m.products {
		if filter.CategorySlug != "" && (p.Category == nil || p.Category.Slug != filter.CategorySlug) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) GetBySlug(_ context.Context, slug string) (*Product, error) {
	m.calls++
	for i := range m.products {
		if m.products[i].Slug == slug {
			return &m.products[i], nil
		}
	}
	return nil, &NotFoundError{Key: slug}
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Product, error) {
	m.calls++
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, &NotFoundError{Key: id}
}

func (m *mockRepo) GetByIDs(_ context.Context, ids []string) ([]Product, error) {
	m.calls++
	var out []Product
	for _, id := range ids {
		for _, p := range m.products {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *mockRepo) ListCategories(_ context.Context) ([]Category, error) {
	return []Category{{Slug: "chairs", Title: "Chairs"}}, nil
}

// --- Helpers ---

func newTestProduct(id, slug string) Product {
	return Product{
		ID:       id,
		Slug:     slug,
		Name:     "Product " + id,
		Price:    decimal.NewFromInt(10),
		Stock:    3,
		Category: &Category{Slug: "chairs", Title: "Chairs"},
	}
}

// --- Tests ---

func TestCatalog_BeforeRefreshPassesThrough(t *testing.T) {
	repo := &mockRepo{products: []Product{newTestProduct("p1", "oak-chair")}}
	c := NewCatalog(repo)

	p, err := c.GetBySlug(context.Background(), "oak-chair")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = c.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, repo.calls)
}

func TestCatalog_FilterShortCircuitsUnknown(t *testing.T) {
	repo := &mockRepo{products: []Product{newTestProduct("p1", "oak-chair"), newTestProduct("p2", "pine-desk")}}
	c := NewCatalog(repo)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 2, c.Size())

	p, err := c.GetByID(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "pine-desk", p.Slug)

	p, err = c.GetBySlug(context.Background(), "oak-chair")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 2, repo.calls)

	// Slugs and ids live in separate key spaces.
	_, err = c.GetBySlug(context.Background(), "p1")
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "p1", nfErr.Key)
	assert.Equal(t, 2, repo.calls)

	_, err = c.GetByID(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_FilterHasNoFalseNegatives(t *testing.T) {
	var products []Product
	for i := range 500 {
		products = append(products, newTestProduct(fmt.Sprintf("p%d", i), fmt.Sprintf("slug-%d", i)))
	}
	repo := &mockRepo{products: products}
	c := NewCatalog(repo)
	require.NoError(t, c.Refresh(context.Background()))

	for _, p := range products {
		got, err := c.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	}
}

func TestCatalog_GetByIDsDropsUnknown(t *testing.T) {
	repo := &mockRepo{products: []Product{newTestProduct("p1", "oak-chair")}}
	c := NewCatalog(repo)
	require.NoError(t, c.Refresh(context.Background()))

	got, err := c.GetByIDs(context.Background(), []string{"p1", ""})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	got, err = c.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalog_RefreshError(t *testing.T) {
	repo := &mockRepo{listErr: errors.New("connection refused")}
	c := NewCatalog(repo)

	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
	assert.Equal(t, 0, c.Size())
}

func TestCatalog_ListByCategory(t *testing.T) {
	desk := newTestProduct("p2", "pine-desk")
	desk.Category = &Category{Slug: "desks", Title: "Desks"}
	repo := &mockRepo{products: []Product{newTestProduct("p1", "oak-chair"), desk}}
	c := NewCatalog(repo)

	got, err := c.List(context.Background(), Filter{CategorySlug: "desks"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}
