package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
)

type countingRepo struct {
	lists atomic.Int32
	fail  atomic.Bool
}

func (r *countingRepo) List(context.Context, product.Filter) ([]product.Product, error) {
	r.lists.Add(1)
	if r.fail.Load() {
		return nil, errors.New("db down")
	}
	return []product.Product{{ID: "p1", Slug: "oak-chair"}}, nil
}

func (r *countingRepo) GetBySlug(context.Context, string) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (r *countingRepo) GetByID(context.Context, string) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (r *countingRepo) GetByIDs(context.Context, []string) ([]product.Product, error) {
	return nil, nil
}

func (r *countingRepo) ListCategories(context.Context) ([]product.Category, error) {
	return nil, nil
}

func runWorker(t *testing.T, fn func(ctx context.Context) error) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	}
}

func TestSweepCarts(t *testing.T) {
	stale := time.Now().Add(-2 * time.Hour)
	carts := cart.NewRegistry(cart.WithClock(func() time.Time { return stale }))
	_, err := carts.Acquire("old")
	require.NoError(t, err)

	stop := runWorker(t, func(ctx context.Context) error {
		return sweepCarts(ctx, zap.NewNop(), carts, CartConfig{
			IdleTTL:       time.Hour,
			SweepInterval: 5 * time.Millisecond,
		})
	})
	defer stop()

	require.Eventually(t, func() bool { return carts.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSweepCarts_KeepsActive(t *testing.T) {
	carts := cart.NewRegistry()
	_, err := carts.Acquire("fresh")
	require.NoError(t, err)

	stop := runWorker(t, func(ctx context.Context) error {
		return sweepCarts(ctx, zap.NewNop(), carts, CartConfig{
			IdleTTL:       time.Hour,
			SweepInterval: 5 * time.Millisecond,
		})
	})
	time.Sleep(30 * time.Millisecond)
	stop()

	assert.Equal(t, 1, carts.Len())
}

func TestRefreshCatalog(t *testing.T) {
	repo := &countingRepo{}
	repo.fail.Store(true)
	catalog := product.NewCatalog(repo)

	stop := runWorker(t, func(ctx context.Context) error {
		return refreshCatalog(ctx, zap.NewNop(), catalog, 5*time.Millisecond)
	})
	defer stop()

	// Failures are retried on the next tick.
	require.Eventually(t, func() bool { return repo.lists.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, catalog.Size())

	repo.fail.Store(false)
	require.Eventually(t, func() bool { return catalog.Size() == 1 }, time.Second, 5*time.Millisecond)
}
