package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/money"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/internal/storage/postgres"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and background
// workers, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))
	if cfg.SessionPepper == "" {
		lg.Warn("Session pepper is empty, session tokens are hashed without a secret")
	}

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Domain services.
	catalog := product.NewCatalog(postgres.NewProductRepository(pool))
	if err := catalog.Refresh(ctx); err != nil {
		lg.Warn("Initial catalog refresh failed, lookups bypass the filter", zap.Error(err))
	}
	orderService := order.NewService(postgres.NewOrderRepository(pool), m.TracerProvider())
	carts := cart.NewRegistry(cart.WithMaxScopes(cfg.Cart.MaxScopes))
	if err := observeCartScopes(m.MeterProvider(), carts); err != nil {
		return err
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP handlers. Cart cookies are signed with the session pepper so they
	// stay valid across instances; without one they last for this process.
	scopes := handler.NewScopeSigner([]byte(cfg.SessionPepper))
	if cfg.SessionPepper == "" {
		if scopes, err = handler.NewRandomScopeSigner(); err != nil {
			return errors.Wrap(err, "cart scope signer")
		}
	}
	h, err := handler.New(
		handler.Config{
			ImageBaseURL: cfg.ImageBaseURL,
			CartCookie:   cfg.Cart.CookieName,
			Scopes:       scopes,
			Money:        money.Formatter{Symbol: cfg.Currency},
		},
		catalog,
		carts,
		orderService,
		m.MeterProvider(),
	)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}
	securityHandler := handler.NewSecurityHandler(postgres.NewSessionRepository(pool), []byte(cfg.SessionPepper))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux, securityHandler)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	limiter := httpmiddleware.NewRateLimiter(httpmiddleware.RateLimitConfig{
		Max:     cfg.RateLimit.Max,
		Window:  cfg.RateLimit.Window,
		KeyFunc: httpmiddleware.CookieKey(cfg.Cart.CookieName, scopes.Valid),
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		// Recovery logs through the injected logger, so it runs inside
		// InjectLogger.
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			limiter.Middleware(),
			httpmiddleware.Instrument("storefront", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(func() error { return sweepCarts(gctx, lg, carts, cfg.Cart) })
	g.Go(func() error { return refreshCatalog(gctx, lg, catalog, cfg.Catalog.RefreshInterval) })

	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}

// observeCartScopes exports the live cart scope count.
func observeCartScopes(mp metric.MeterProvider, carts *cart.Registry) error {
	_, err := mp.Meter("storefront/app").Int64ObservableGauge(
		"storefront.cart.scopes",
		metric.WithDescription("Live cart scopes"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(carts.Len()))
			return nil
		}),
	)
	if err != nil {
		return errors.Wrap(err, "cart scopes gauge")
	}
	return nil
}
