package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Order represents a placed customer order.
type Order struct {
	ID     string
	Number string
	// UserID is the owner of the order.
	UserID    string
	Status    Status
	Email     string
	Total     decimal.Decimal
	Items     []Item
	Address   *Address
	CreatedAt time.Time
}

// Item is a single line item of an order. Price and quantity are optional
// because historical orders may lack them.
type Item struct {
	Key             string           `json:"key"`
	ProductID       string           `json:"product_id"`
	ProductSlug     string           `json:"product_slug"`
	ProductName     string           `json:"product_name"`
	ImageURL        string           `json:"image_url"`
	PriceAtPurchase *decimal.Decimal `json:"price_at_purchase"`
	Quantity        *int             `json:"quantity"`
}

// Address is the shipping address of an order.
type Address struct {
	Name     string `json:"name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Repository defines read operations for orders.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}
