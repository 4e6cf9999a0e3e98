package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

const maxBodySize = 1 << 16

// writeJSON writes the object produced by encode with status code.
func writeJSON(w http.ResponseWriter, code int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// decodeObject walks the fields of a JSON object body. Unknown fields are
// skipped.
func decodeObject(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if len(body) == 0 {
		return errors.New("empty body")
	}
	return jx.DecodeBytes(body).ObjBytes(func(d *jx.Decoder, key []byte) error {
		return field(d, string(key))
	})
}

func writeAmount(e *jx.Encoder, name, amount, formatted string) {
	e.FieldStart(name)
	e.Str(amount)
	e.FieldStart(name + "Formatted")
	e.Str(formatted)
}

func (h *Handler) encodeAmount(e *jx.Encoder, name string, d decimal.Decimal) {
	writeAmount(e, name, d.StringFixed(2), h.money.Format(d))
}

func encodeCategory(e *jx.Encoder, c *product.Category) {
	e.FieldStart("category")
	if c == nil {
		e.Null()
		return
	}
	e.ObjStart()
	e.FieldStart("slug")
	e.Str(c.Slug)
	e.FieldStart("title")
	e.Str(c.Title)
	e.ObjEnd()
}

func (h *Handler) encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("slug")
	e.Str(p.Slug)
	e.FieldStart("name")
	e.Str(p.Name)
	h.encodeAmount(e, "price", p.Price)
	e.FieldStart("image")
	e.Str(h.imageURL(p.FirstImage()))
	e.FieldStart("stock")
	e.Int(max(p.Stock, 0))
	e.FieldStart("stockStatus")
	e.Str(string(product.StockStatusOf(p.Stock)))
	encodeCategory(e, p.Category)
	e.ObjEnd()
}

func (h *Handler) encodeInfo(e *jx.Encoder, p product.Product, info product.Info) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("slug")
	e.Str(p.Slug)
	e.FieldStart("category")
	if info.Category == nil {
		e.Null()
	} else {
		e.ObjStart()
		e.FieldStart("title")
		e.Str(info.Category.Title)
		e.FieldStart("href")
		e.Str(info.Category.Href)
		e.ObjEnd()
	}
	e.FieldStart("name")
	e.Str(info.Name)
	writeAmount(e, "price", p.Price.StringFixed(2), info.Price)
	e.FieldStart("description")
	e.Str(info.Description)
	e.FieldStart("images")
	e.ArrStart()
	for _, img := range p.Images {
		e.Str(h.imageURL(img))
	}
	e.ArrEnd()
	e.FieldStart("stock")
	e.Int(info.Stock)
	e.FieldStart("stockStatus")
	e.Str(string(info.StockStatus))

	add := info.AddToCart
	e.FieldStart("addToCart")
	e.ObjStart()
	e.FieldStart("productId")
	e.Str(add.ProductID)
	e.FieldStart("name")
	e.Str(add.Name)
	e.FieldStart("price")
	e.Str(add.Price.StringFixed(2))
	e.FieldStart("image")
	e.Str(h.imageURL(add.Image))
	if add.Stock != nil {
		e.FieldStart("stock")
		e.Int(*add.Stock)
	}
	e.ObjEnd()

	e.FieldStart("similarSubject")
	e.Str(info.SimilarSubject)
	e.FieldStart("details")
	e.ArrStart()
	for _, row := range info.Details {
		e.ObjStart()
		e.FieldStart("label")
		e.Str(row.Label)
		e.FieldStart("value")
		e.Str(row.Value)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

// cartView is an atomic read of everything a cart response shows.
type cartView struct {
	Items      []cart.Item
	IsOpen     bool
	TotalItems int
	TotalPrice decimal.Decimal
}

func selectCartView(s cart.State) cartView {
	return cartView{
		Items:      cart.SelectItems(s),
		IsOpen:     cart.SelectIsOpen(s),
		TotalItems: cart.SelectTotalItems(s),
		TotalPrice: cart.SelectTotalPrice(s),
	}
}

func (h *Handler) encodeCart(e *jx.Encoder, v cartView, changed *bool) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range v.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(item.ProductID)
		e.FieldStart("name")
		e.Str(item.Name)
		h.encodeAmount(e, "price", item.Price)
		e.FieldStart("image")
		e.Str(item.Image)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		h.encodeAmount(e, "lineTotal", item.LineTotal())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("isOpen")
	e.Bool(v.IsOpen)
	e.FieldStart("totalItems")
	e.Int(v.TotalItems)
	h.encodeAmount(e, "totalPrice", v.TotalPrice)
	if changed != nil {
		e.FieldStart("changed")
		e.Bool(*changed)
	}
	e.ObjEnd()
}

func encodeStatus(e *jx.Encoder, s order.StatusInfo) {
	e.FieldStart("status")
	e.ObjStart()
	e.FieldStart("label")
	e.Str(s.Label)
	e.FieldStart("tone")
	e.Str(s.Tone)
	e.ObjEnd()
}

func encodeSummary(e *jx.Encoder, s order.Summary) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(s.ID)
	e.FieldStart("number")
	e.Str(s.Number)
	e.FieldStart("placedOn")
	e.Str(s.PlacedOn)
	encodeStatus(e, s.Status)
	e.FieldStart("itemCount")
	e.Int(s.ItemCount)
	e.FieldStart("total")
	e.Str(s.Total)
	e.ObjEnd()
}

func (h *Handler) encodeDetail(e *jx.Encoder, d order.Detail) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(d.ID)
	e.FieldStart("number")
	e.Str(d.Number)
	e.FieldStart("placedOn")
	e.Str(d.PlacedOn)
	encodeStatus(e, d.Status)
	e.FieldStart("items")
	e.ArrStart()
	for _, row := range d.Items {
		e.ObjStart()
		e.FieldStart("key")
		e.Str(row.Key)
		e.FieldStart("name")
		e.Str(row.Name)
		e.FieldStart("href")
		e.Str(row.Href)
		e.FieldStart("image")
		e.Str(h.imageURL(row.ImageURL))
		e.FieldStart("quantity")
		e.Int(row.Quantity)
		e.FieldStart("lineTotal")
		e.Str(row.LineTotal)
		if row.Each != "" {
			e.FieldStart("each")
			e.Str(row.Each)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Str(d.Subtotal)
	e.FieldStart("total")
	e.Str(d.Total)
	e.FieldStart("address")
	e.ArrStart()
	for _, line := range d.Address {
		e.Str(line)
	}
	e.ArrEnd()
	e.FieldStart("paymentStatus")
	e.Str(d.PaymentStatus)
	e.FieldStart("email")
	e.Str(d.Email)
	e.ObjEnd()
}
