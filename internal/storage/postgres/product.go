package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/product"
)

const productColumns = `p.id, p.slug, p.name, p.description, p.price, p.stock,
	c.slug, c.title, p.images, p.material, p.color, p.dimensions,
	p.assembly_required, p.featured`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.slug = p.category_slug`

const (
	listProductsSQL = `SELECT ` + productColumns + productFrom + `
		WHERE ($1 = '' OR p.category_slug = $1)
		ORDER BY p.name, p.id`

	getProductBySlugSQL = `SELECT ` + productColumns + productFrom + ` WHERE p.slug = $1`

	getProductByIDSQL = `SELECT ` + productColumns + productFrom + ` WHERE p.id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + productFrom + ` WHERE p.id = ANY($1)`

	listCategoriesSQL = `SELECT slug, title FROM categories ORDER BY title, slug`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns products ordered by name, optionally limited to a category.
func (r *ProductRepository) List(ctx context.Context, filter product.Filter) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL, filter.CategorySlug)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetBySlug returns a single product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.getOne(ctx, getProductBySlugSQL, slug)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

func (r *ProductRepository) getOne(ctx context.Context, query, key string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, query, key)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", key)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &product.NotFoundError{Key: key}
		}
		return nil, errors.Wrapf(err, "get product %q", key)
	}
	return &p, nil
}

// GetByIDs returns the products matching any of ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products by ids")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListCategories returns every category ordered by title.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Category, error) {
		var c product.Category
		err := row.Scan(&c.Slug, &c.Title)
		return c, err
	})
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p                           product.Product
		categorySlug, categoryTitle *string
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Stock,
		&categorySlug, &categoryTitle, &p.Images, &p.Material, &p.Color, &p.Dimensions,
		&p.AssemblyRequired, &p.Featured,
	)
	if err != nil {
		return p, err
	}
	if categorySlug != nil {
		p.Category = &product.Category{Slug: *categorySlug}
		if categoryTitle != nil {
			p.Category.Title = *categoryTitle
		}
	}
	return p, nil
}
