package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// ListProducts returns the catalog, optionally limited by ?category=slug.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := product.Filter{CategorySlug: r.URL.Query().Get("category")}
	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		mapProductError(w, r, errors.Wrap(err, "list products"))
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			h.encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}

// GetProduct returns the product info view of one product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		mapProductError(w, r, err)
		return
	}

	info := product.NewInfo(*p, h.money)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeInfo(e, *p, info)
	})
}

// ListCategories returns every category.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		mapProductError(w, r, errors.Wrap(err, "list categories"))
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, c := range categories {
			e.ObjStart()
			e.FieldStart("slug")
			e.Str(c.Slug)
			e.FieldStart("title")
			e.Str(c.Title)
			e.FieldStart("href")
			e.Str("/?category=" + c.Slug)
			e.ObjEnd()
		}
		e.ArrEnd()
	})
}

// mapProductError converts catalog errors to error responses.
func mapProductError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, product.ErrNotFound) {
		httpmiddleware.WriteError(w, http.StatusNotFound, "product not found")
		return
	}
	zctx.From(r.Context()).Error("Product request failed", zap.Error(err))
	httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal server error")
}
