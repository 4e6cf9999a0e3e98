package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL   string
		seedPath      string
		sessionPepper string
		development   bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/storefront.json", "path to the seed JSON file (.json or .json.gz)")
	flag.StringVar(&sessionPepper, "session-pepper", "", "HMAC pepper for session token hashing (or SHOP_SESSION_PEPPER env)")
	flag.BoolVar(&development, "dev", false, "human-readable development logging")
	flag.Parse()

	lg := newLogger(development)
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("database URL is required: set --database-url or DATABASE_URL")
	}
	if sessionPepper == "" {
		sessionPepper = os.Getenv("SHOP_SESSION_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, seedPath, []byte(sessionPepper)); err != nil {
		lg.Error("Seed failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}

	lg.Info("Seed completed successfully")
}

func newLogger(development bool) *zap.Logger {
	var (
		lg  *zap.Logger
		err error
	)
	if development {
		lg, err = zap.NewDevelopment()
	} else {
		lg, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return lg.Named("seed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, seedPath string, pepper []byte) error {
	lg.Info("Reading seed file", zap.String("path", seedPath))

	f, err := openSeed(seedPath)
	if err != nil {
		return err
	}
	ds, err := readDataset(f, pepper)
	_ = f.Close()
	if err != nil {
		return errors.Wrapf(err, "read %s", seedPath)
	}

	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := postgres.NewLoader(pool).Load(ctx, ds); err != nil {
		return errors.Wrap(err, "load dataset")
	}

	lg.Info("Upserted dataset",
		zap.Int("categories", len(ds.Categories)),
		zap.Int("products", len(ds.Products)),
		zap.Int("orders", len(ds.Orders)),
		zap.Int("sessions", len(ds.Sessions)),
	)
	return nil
}
