package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// MaxQuantity bounds the quantity a line item can be set to.
const MaxQuantity = 999

// CartScope binds the caller's cart store to the request context. Callers
// without a valid signed scope cookie get a new scope and cookie.
func (h *Handler) CartScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scopeID, ok := h.scopeFromCookie(r)
		cookie := ""
		if !ok {
			scopeID, cookie = h.scopes.Issue()
		}

		store, err := h.carts.Acquire(scopeID)
		if err != nil {
			lg := zctx.From(r.Context()).With(zap.String("cart_id", scopeID))
			if errors.Is(err, cart.ErrScopeLimit) {
				lg.Warn("Cart scope refused", zap.Error(err))
				w.Header().Set("Retry-After", "60")
				httpmiddleware.WriteError(w, http.StatusServiceUnavailable, "too many active carts")
				return
			}
			lg.Error("Acquire cart scope", zap.Error(err))
			httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if cookie != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     h.cartCookie,
				Value:    cookie,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		serveScoped(w, r, next, store, scopeID)
	})
}

// CartView binds the caller's live cart store for read-only requests. It
// never creates a scope: callers without one see an empty, closed cart.
func (h *Handler) CartView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if scopeID, ok := h.scopeFromCookie(r); ok {
			if store, found := h.carts.Lookup(scopeID); found {
				serveScoped(w, r, next, store, scopeID)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(cart.NewContext(r.Context(), cart.New())))
	})
}

func (h *Handler) scopeFromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(h.cartCookie)
	if err != nil {
		return "", false
	}
	return h.scopes.Verify(c.Value)
}

func serveScoped(w http.ResponseWriter, r *http.Request, next http.Handler, store *cart.Store, scopeID string) {
	ctx := zctx.With(cart.NewContext(r.Context(), store), zap.String("cart_id", scopeID))
	next.ServeHTTP(w, r.WithContext(ctx))
}

// GetCart returns the scoped cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(r.Context(), w, nil)
}

// AddCartItem adds one unit of the product named by {"productId"}. Name,
// price, image and stock are taken from the catalog.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var productID string
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "productId" {
			return d.Skip()
		}
		v, err := d.Str()
		productID = v
		return err
	})
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if productID == "" {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "productId required")
		return
	}

	ctx := r.Context()
	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		mapProductError(w, r, err)
		return
	}

	in := product.AddToCartInput(*p)
	in.Image = h.imageURL(in.Image)
	changed := cart.UseActions(ctx).AddItem(in)
	if changed {
		h.countMutation(ctx, "add")
	}
	h.writeCart(ctx, w, &changed)
}

// UpdateCartItem sets the quantity of a line item from {"quantity"}.
// Quantities of zero or less remove it; quantities above MaxQuantity are
// rejected.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var (
		quantity int
		found    bool
	)
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		v, err := d.Int()
		quantity, found = v, true
		return err
	})
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !found {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "quantity required")
		return
	}
	if quantity > MaxQuantity {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "quantity out of range")
		return
	}

	ctx := r.Context()
	if cart.UseActions(ctx).UpdateQuantity(r.PathValue("productId"), quantity) {
		h.countMutation(ctx, "update_quantity")
	}
	h.writeCart(ctx, w, nil)
}

// RemoveCartItem removes a line item.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if cart.UseActions(ctx).RemoveItem(r.PathValue("productId")) {
		h.countMutation(ctx, "remove")
	}
	h.writeCart(ctx, w, nil)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, "clear", func(a cart.Actions) func() bool { return a.ClearCart })
}

// ToggleCart flips the cart panel.
func (h *Handler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, "toggle", func(a cart.Actions) func() bool { return a.ToggleCart })
}

// OpenCart opens the cart panel.
func (h *Handler) OpenCart(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, "open", func(a cart.Actions) func() bool { return a.OpenCart })
}

// CloseCart closes the cart panel.
func (h *Handler) CloseCart(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, "close", func(a cart.Actions) func() bool { return a.CloseCart })
}

func (h *Handler) panelAction(w http.ResponseWriter, r *http.Request, op string, pick func(cart.Actions) func() bool) {
	ctx := r.Context()
	if pick(cart.UseActions(ctx))() {
		h.countMutation(ctx, op)
	}
	h.writeCart(ctx, w, nil)
}

func (h *Handler) countMutation(ctx context.Context, op string) {
	h.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (h *Handler) writeCart(ctx context.Context, w http.ResponseWriter, changed *bool) {
	view := cart.Use(ctx, selectCartView)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeCart(e, view, changed)
	})
}
