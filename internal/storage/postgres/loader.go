package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

const (
	upsertCategorySQL = `INSERT INTO categories (slug, title) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title`

	upsertProductSQL = `INSERT INTO products (id, slug, name, description, price, stock,
			category_slug, images, material, color, dimensions, assembly_required, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug, name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, stock = EXCLUDED.stock, category_slug = EXCLUDED.category_slug,
			images = EXCLUDED.images, material = EXCLUDED.material, color = EXCLUDED.color,
			dimensions = EXCLUDED.dimensions, assembly_required = EXCLUDED.assembly_required,
			featured = EXCLUDED.featured`

	upsertOrderSQL = `INSERT INTO orders (id, order_number, user_id, status, email, total, items, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			order_number = EXCLUDED.order_number, user_id = EXCLUDED.user_id,
			status = EXCLUDED.status, email = EXCLUDED.email, total = EXCLUDED.total,
			items = EXCLUDED.items, address = EXCLUDED.address, created_at = EXCLUDED.created_at`

	upsertSessionSQL = `INSERT INTO sessions (token_hash, user_id, email, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_hash) DO UPDATE SET
			user_id = EXCLUDED.user_id, email = EXCLUDED.email, expires_at = EXCLUDED.expires_at`
)

// Dataset is a full set of seed records.
type Dataset struct {
	Categories []product.Category
	Products   []product.Product
	Orders     []order.Order
	Sessions   []auth.Session
}

// Loader writes seed data.
type Loader struct {
	pool *pgxpool.Pool
}

// NewLoader returns a Loader that uses the given pool.
func NewLoader(pool *pgxpool.Pool) *Loader {
	return &Loader{pool: pool}
}

// Load upserts every record of ds in one transaction.
func (l *Loader) Load(ctx context.Context, ds Dataset) error {
	return pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, c := range ds.Categories {
			b.Queue(upsertCategorySQL, c.Slug, c.Title)
		}
		for _, p := range ds.Products {
			var categorySlug *string
			if p.Category != nil {
				categorySlug = &p.Category.Slug
			}
			images := p.Images
			if images == nil {
				images = []string{}
			}
			b.Queue(upsertProductSQL,
				p.ID, p.Slug, p.Name, p.Description, p.Price, max(p.Stock, 0),
				categorySlug, images, p.Material, p.Color, p.Dimensions,
				p.AssemblyRequired, p.Featured,
			)
		}
		for _, o := range ds.Orders {
			items := o.Items
			if items == nil {
				items = []order.Item{}
			}
			b.Queue(upsertOrderSQL,
				o.ID, o.Number, o.UserID, string(o.Status), o.Email, o.Total,
				items, o.Address, o.CreatedAt,
			)
		}
		for _, s := range ds.Sessions {
			var expiresAt any
			if !s.ExpiresAt.IsZero() {
				expiresAt = s.ExpiresAt
			}
			b.Queue(upsertSessionSQL, s.TokenHash, s.User.ID, s.User.Email, expiresAt)
		}
		if b.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return errors.Wrap(err, "send batch")
		}
		return nil
	})
}
