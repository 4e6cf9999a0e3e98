package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
)

// sweepCarts tears down cart scopes idle for longer than cfg.IdleTTL every
// cfg.SweepInterval until ctx is done.
func sweepCarts(ctx context.Context, lg *zap.Logger, carts *cart.Registry, cfg CartConfig) error {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if removed := carts.Sweep(now.Add(-cfg.IdleTTL)); removed > 0 {
				lg.Debug("Swept idle carts",
					zap.Int("removed", removed),
					zap.Int("live", carts.Len()),
				)
			}
		}
	}
}

// refreshCatalog rebuilds the catalog lookup filter every interval until ctx
// is done. Failures keep the previous filter.
func refreshCatalog(ctx context.Context, lg *zap.Logger, catalog *product.Catalog, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := catalog.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				lg.Warn("Catalog refresh failed", zap.Error(err))
				continue
			}
			lg.Debug("Catalog refreshed", zap.Int("products", catalog.Size()))
		}
	}
}
