package cart

import "github.com/shopspring/decimal"

// Selector derives a value from a cart state without mutating it.
type Selector[T any] func(State) T

// SelectItems returns a copy of the ordered line items.
func SelectItems(s State) []Item {
	return s.clone().Items
}

// SelectIsOpen returns the cart panel flag.
func SelectIsOpen(s State) bool {
	return s.IsOpen
}

// SelectTotalItems returns the sum of quantities.
func SelectTotalItems(s State) int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// SelectTotalPrice returns the sum of price × quantity.
func SelectTotalPrice(s State) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range s.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Lookup is the result of looking an item up by product id.
type Lookup struct {
	Item  Item
	Found bool
}

// SelectItem returns a selector that finds the line item for productID.
func SelectItem(productID string) Selector[Lookup] {
	return func(s State) Lookup {
		if i := s.indexOf(productID); i >= 0 {
			return Lookup{Item: s.Items[i], Found: true}
		}
		return Lookup{}
	}
}
