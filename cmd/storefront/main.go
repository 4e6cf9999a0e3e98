// Command storefront serves the catalog, cart and order API.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/storefront/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "config")
		}
		lg.Info("Config loaded",
			zap.String("currency", cfg.Currency),
			zap.Duration("cart_idle_ttl", cfg.Cart.IdleTTL),
			zap.Int("cart_max_scopes", cfg.Cart.MaxScopes),
		)
		return appkg.Run(ctx, lg, m, cfg)
	})
}
