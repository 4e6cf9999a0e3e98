package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/money"
)

func boolPtr(v bool) *bool { return &v }

func TestStockStatusOf(t *testing.T) {
	tests := []struct {
		stock int
		want  StockStatus
	}{
		{stock: -1, want: OutOfStock},
		{stock: 0, want: OutOfStock},
		{stock: 1, want: LowStock},
		{stock: 5, want: LowStock},
		{stock: 6, want: InStock},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StockStatusOf(tt.stock), "stock %d", tt.stock)
	}
}

func TestNewInfo_FullProduct(t *testing.T) {
	p := Product{
		ID:               "p1",
		Slug:             "oak-chair",
		Name:             "Oak Chair",
		Description:      "Solid oak.",
		Price:            decimal.RequireFromString("1249.5"),
		Stock:            12,
		Category:         &Category{Slug: "chairs", Title: "Chairs"},
		Images:           []string{"a.jpg", "b.jpg"},
		Material:         "oak",
		Color:            "natural",
		Dimensions:       "45 x 50 x 90 cm",
		AssemblyRequired: boolPtr(false),
		Featured:         boolPtr(true),
	}

	info := NewInfo(p, money.Formatter{Symbol: "£"})

	require.NotNil(t, info.Category)
	assert.Equal(t, "Chairs", info.Category.Title)
	assert.Equal(t, "/?category=chairs", info.Category.Href)
	assert.Equal(t, "Oak Chair", info.Name)
	assert.Equal(t, "£1,249.50", info.Price)
	assert.Equal(t, InStock, info.StockStatus)
	assert.Equal(t, "Oak Chair", info.SimilarSubject)

	assert.Equal(t, "p1", info.AddToCart.ProductID)
	assert.Equal(t, "a.jpg", info.AddToCart.Image)
	require.NotNil(t, info.AddToCart.Stock)
	assert.Equal(t, 12, *info.AddToCart.Stock)

	assert.Equal(t, []DetailRow{
		{Label: "Material", Value: "oak"},
		{Label: "Color", Value: "natural"},
		{Label: "Dimensions", Value: "45 x 50 x 90 cm"},
		{Label: "Stock", Value: "12 units available"},
		{Label: "Assembly", Value: "Not required"},
		{Label: "Featured", Value: "Yes"},
	}, info.Details)
}

func TestNewInfo_Fallbacks(t *testing.T) {
	info := NewInfo(Product{ID: "p9"}, money.Formatter{})

	assert.Nil(t, info.Category)
	assert.Equal(t, "£0.00", info.Price)
	assert.Equal(t, OutOfStock, info.StockStatus)
	assert.Equal(t, "this product", info.SimilarSubject)

	assert.Equal(t, "Unknown Product", info.AddToCart.Name)
	assert.True(t, info.AddToCart.Price.IsZero())
	assert.Empty(t, info.AddToCart.Image)
	require.NotNil(t, info.AddToCart.Stock)
	assert.Equal(t, 0, *info.AddToCart.Stock)

	assert.Equal(t, []DetailRow{{Label: "Stock", Value: "0 units available"}}, info.Details)
}

func TestNewInfo_AssemblyRequired(t *testing.T) {
	info := NewInfo(Product{ID: "p1", Stock: 2, AssemblyRequired: boolPtr(true), Featured: boolPtr(false)}, money.Formatter{})

	assert.Equal(t, LowStock, info.StockStatus)
	assert.Equal(t, []DetailRow{
		{Label: "Stock", Value: "2 units available"},
		{Label: "Assembly", Value: "Required"},
		{Label: "Featured", Value: "No"},
	}, info.Details)
}
