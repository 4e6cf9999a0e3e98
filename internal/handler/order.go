package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// ListOrders returns the order history of the signed-in user.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		httpmiddleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orders.ListForUser(ctx, user.ID)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, o := range orders {
			encodeSummary(e, order.NewSummary(o, h.money))
		}
		e.ArrEnd()
	})
}

// GetOrder returns one order of the signed-in user. Signed-out callers get
// the same not found response as for someone else's order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := auth.UserFromContext(ctx)

	o, err := h.orders.Get(ctx, r.PathValue("id"), user.ID)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}

	detail := order.NewDetail(*o, h.money)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeDetail(e, detail)
	})
}

// mapOrderError converts order service errors to error responses.
func mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var nfErr *order.NotFoundError
	if errors.As(err, &nfErr) {
		httpmiddleware.WriteError(w, http.StatusNotFound, nfErr.Error())
		return
	}
	zctx.From(r.Context()).Error("Order request failed", zap.Error(err))
	httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal server error")
}
