package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/internal/storage/postgres"
)

type seedFile struct {
	Categories []product.Category `json:"categories"`
	Products   []productJSON      `json:"products"`
	Orders     []orderJSON        `json:"orders"`
	Sessions   []sessionJSON      `json:"sessions"`
}

type productJSON struct {
	ID               string          `json:"id"`
	Slug             string          `json:"slug"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	Category         string          `json:"category"`
	Images           []string        `json:"images"`
	Material         string          `json:"material"`
	Color            string          `json:"color"`
	Dimensions       string          `json:"dimensions"`
	AssemblyRequired *bool           `json:"assemblyRequired"`
	Featured         *bool           `json:"featured"`
}

type orderJSON struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	UserID    string          `json:"userId"`
	Status    string          `json:"status"`
	Email     string          `json:"email"`
	Total     decimal.Decimal `json:"total"`
	Items     []order.Item    `json:"items"`
	Address   *order.Address  `json:"address"`
	CreatedAt time.Time       `json:"createdAt"`
}

// sessionJSON carries the raw bearer token; only its hash is stored.
type sessionJSON struct {
	Token     string     `json:"token"`
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// openSeed opens path, transparently decompressing .gz files.
func openSeed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open seed file")
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "open gzip stream")
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return zerr
}

// readDataset decodes a seed file and converts it to loader records. Session
// tokens are hashed with pepper.
func readDataset(r io.Reader, pepper []byte) (postgres.Dataset, error) {
	var raw seedFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return postgres.Dataset{}, errors.Wrap(err, "parse seed JSON")
	}

	categories := make(map[string]product.Category, len(raw.Categories))
	for _, c := range raw.Categories {
		if c.Slug == "" {
			return postgres.Dataset{}, errors.New("category without slug")
		}
		categories[c.Slug] = c
	}

	ds := postgres.Dataset{Categories: raw.Categories}
	for _, p := range raw.Products {
		if p.ID == "" || p.Slug == "" {
			return postgres.Dataset{}, errors.Errorf("product %q: id and slug are required", p.Name)
		}
		if p.Price.IsNegative() {
			return postgres.Dataset{}, errors.Errorf("product %s: negative price", p.ID)
		}
		rec := product.Product{
			ID:               p.ID,
			Slug:             p.Slug,
			Name:             p.Name,
			Description:      p.Description,
			Price:            p.Price,
			Stock:            max(p.Stock, 0),
			Images:           p.Images,
			Material:         p.Material,
			Color:            p.Color,
			Dimensions:       p.Dimensions,
			AssemblyRequired: p.AssemblyRequired,
			Featured:         p.Featured,
		}
		if p.Category != "" {
			c, ok := categories[p.Category]
			if !ok {
				return postgres.Dataset{}, errors.Errorf("product %s: unknown category %q", p.ID, p.Category)
			}
			rec.Category = &c
		}
		ds.Products = append(ds.Products, rec)
	}

	for _, o := range raw.Orders {
		if o.ID == "" || o.UserID == "" {
			return postgres.Dataset{}, errors.Errorf("order %q: id and userId are required", o.Number)
		}
		status := order.Status(o.Status)
		if status == "" {
			status = order.StatusPending
		}
		ds.Orders = append(ds.Orders, order.Order{
			ID:        o.ID,
			Number:    o.Number,
			UserID:    o.UserID,
			Status:    status,
			Email:     o.Email,
			Total:     o.Total,
			Items:     o.Items,
			Address:   o.Address,
			CreatedAt: o.CreatedAt,
		})
	}

	for _, s := range raw.Sessions {
		if s.Token == "" || s.UserID == "" {
			return postgres.Dataset{}, errors.New("session: token and userId are required")
		}
		rec := auth.Session{
			TokenHash: handler.HashToken(pepper, s.Token),
			User:      auth.User{ID: s.UserID, Email: s.Email},
		}
		if s.ExpiresAt != nil {
			rec.ExpiresAt = *s.ExpiresAt
		}
		ds.Sessions = append(ds.Sessions, rec)
	}
	return ds, nil
}
