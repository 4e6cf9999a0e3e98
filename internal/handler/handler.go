// Package handler serves the storefront JSON API over net/http.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/money"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// DefaultCartCookie names the cookie carrying the cart scope id.
const DefaultCartCookie = "cart_id"

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
	// CartCookie names the cart scope cookie. Defaults to DefaultCartCookie.
	CartCookie string
	// Scopes signs cart scope cookies. Defaults to a random per-process key.
	Scopes *ScopeSigner
	Money  money.Formatter
}

// Handler serves the storefront API, delegating to the product catalog, the
// cart registry and the order service.
type Handler struct {
	products     product.Repository
	carts        *cart.Registry
	orders       *order.Service
	money        money.Formatter
	imageBaseURL string
	cartCookie   string
	scopes       *ScopeSigner

	mutations metric.Int64Counter
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	carts *cart.Registry,
	orders *order.Service,
	mp metric.MeterProvider,
) (*Handler, error) {
	mutations, err := mp.Meter("storefront/handler").Int64Counter(
		"storefront.cart.mutations",
		metric.WithDescription("Cart mutations by operation"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "cart mutations counter")
	}

	cookie := cfg.CartCookie
	if cookie == "" {
		cookie = DefaultCartCookie
	}
	scopes := cfg.Scopes
	if scopes == nil {
		if scopes, err = NewRandomScopeSigner(); err != nil {
			return nil, err
		}
	}
	return &Handler{
		products:     products,
		carts:        carts,
		orders:       orders,
		money:        cfg.Money,
		imageBaseURL: cfg.ImageBaseURL,
		cartCookie:   cookie,
		scopes:       scopes,
		mutations:    mutations,
	}, nil
}

// Register mounts every API route on mux. The order history requires a
// session resolved by sec; an order page without one is not found.
func (h *Handler) Register(mux *http.ServeMux, sec *SecurityHandler) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.GetProduct)
	mux.HandleFunc("GET /api/categories", h.ListCategories)

	scoped := func(fn http.HandlerFunc) http.Handler { return h.CartScope(fn) }
	mux.Handle("GET /api/cart", h.CartView(http.HandlerFunc(h.GetCart)))
	mux.Handle("DELETE /api/cart", scoped(h.ClearCart))
	mux.Handle("POST /api/cart/items", scoped(h.AddCartItem))
	mux.Handle("PATCH /api/cart/items/{productId}", scoped(h.UpdateCartItem))
	mux.Handle("DELETE /api/cart/items/{productId}", scoped(h.RemoveCartItem))
	mux.Handle("POST /api/cart/toggle", scoped(h.ToggleCart))
	mux.Handle("POST /api/cart/open", scoped(h.OpenCart))
	mux.Handle("POST /api/cart/close", scoped(h.CloseCart))

	mux.Handle("GET /api/orders", sec.RequireSession(http.HandlerFunc(h.ListOrders)))
	mux.Handle("GET /api/orders/{id}", sec.OptionalSession(http.HandlerFunc(h.GetOrder)))
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
