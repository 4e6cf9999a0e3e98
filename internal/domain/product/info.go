package product

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/money"
)

// LowStockThreshold is the highest stock level still shown as low stock.
const LowStockThreshold = 5

// StockStatus classifies product availability.
type StockStatus string

const (
	InStock    StockStatus = "in_stock"
	LowStock   StockStatus = "low_stock"
	OutOfStock StockStatus = "out_of_stock"
)

// StockStatusOf returns the availability class of a stock level.
func StockStatusOf(stock int) StockStatus {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock <= LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

const (
	unknownProductName = "Unknown Product"
	similarFallback    = "this product"
)

// CategoryLink points at the listing filtered by one category.
type CategoryLink struct {
	Title string
	Href  string
}

// DetailRow is one label/value pair of the product details table.
type DetailRow struct {
	Label string
	Value string
}

// Info is the product page view model.
type Info struct {
	Category       *CategoryLink
	Name           string
	Price          string
	Description    string
	Stock          int
	StockStatus    StockStatus
	AddToCart      cart.AddInput
	SimilarSubject string
	Details        []DetailRow
}

// NewInfo builds the product page view of p.
func NewInfo(p Product, f money.Formatter) Info {
	info := Info{
		Name:           p.Name,
		Price:          f.Format(p.Price),
		Description:    p.Description,
		Stock:          max(p.Stock, 0),
		StockStatus:    StockStatusOf(p.Stock),
		AddToCart:      AddToCartInput(p),
		SimilarSubject: p.Name,
		Details:        detailRows(p),
	}
	if info.SimilarSubject == "" {
		info.SimilarSubject = similarFallback
	}
	if p.Category != nil {
		info.Category = &CategoryLink{
			Title: p.Category.Title,
			Href:  "/?category=" + p.Category.Slug,
		}
	}
	return info
}

// AddToCartInput returns the cart input for one unit of p, bounded by its
// stock.
func AddToCartInput(p Product) cart.AddInput {
	name := p.Name
	if name == "" {
		name = unknownProductName
	}
	price := p.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	return cart.AddInput{
		ProductID: p.ID,
		Name:      name,
		Price:     price,
		Image:     p.FirstImage(),
	}.WithStock(max(p.Stock, 0))
}

func detailRows(p Product) []DetailRow {
	var rows []DetailRow
	if p.Material != "" {
		rows = append(rows, DetailRow{Label: "Material", Value: p.Material})
	}
	if p.Color != "" {
		rows = append(rows, DetailRow{Label: "Color", Value: p.Color})
	}
	if p.Dimensions != "" {
		rows = append(rows, DetailRow{Label: "Dimensions", Value: p.Dimensions})
	}
	rows = append(rows, DetailRow{
		Label: "Stock",
		Value: strconv.Itoa(max(p.Stock, 0)) + " units available",
	})
	if p.AssemblyRequired != nil {
		rows = append(rows, DetailRow{Label: "Assembly", Value: yesNo(*p.AssemblyRequired, "Required", "Not required")})
	}
	if p.Featured != nil {
		rows = append(rows, DetailRow{Label: "Featured", Value: yesNo(*p.Featured, "Yes", "No")})
	}
	return rows
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
