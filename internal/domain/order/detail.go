package order

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/money"
)

// DateLayout is the display format of order dates.
const DateLayout = "2 January 2006"

// StatusInfo is the display form of a Status.
type StatusInfo struct {
	Label string
	Tone  string
}

var statusTable = map[Status]StatusInfo{
	StatusPending:    {Label: "Pending", Tone: "yellow"},
	StatusPaid:       {Label: "Paid", Tone: "green"},
	StatusProcessing: {Label: "Processing", Tone: "blue"},
	StatusShipped:    {Label: "Shipped", Tone: "purple"},
	StatusDelivered:  {Label: "Delivered", Tone: "green"},
	StatusCancelled:  {Label: "Cancelled", Tone: "red"},
}

// StatusOf returns the display form of s. Unrecognised values map to
// "Unknown".
func StatusOf(s Status) StatusInfo {
	if info, ok := statusTable[s]; ok {
		return info
	}
	return StatusInfo{Label: "Unknown", Tone: "gray"}
}

// ItemRow is one rendered order line.
type ItemRow struct {
	Key       string
	Name      string
	Href      string
	ImageURL  string
	Quantity  int
	LineTotal string
	// Each is the unit price, set only when more than one unit was bought.
	Each string
}

// Detail is the order page view model.
type Detail struct {
	ID            string
	Number        string
	PlacedOn      string
	Status        StatusInfo
	Items         []ItemRow
	Subtotal      string
	Total         string
	Address       []string
	PaymentStatus string
	Email         string
}

// Summary is one row of the order history.
type Summary struct {
	ID        string
	Number    string
	PlacedOn  string
	Status    StatusInfo
	ItemCount int
	Total     string
}

// NewSummary builds the order history row of o.
func NewSummary(o Order, f money.Formatter) Summary {
	return Summary{
		ID:        o.ID,
		Number:    o.Number,
		PlacedOn:  o.CreatedAt.Format(DateLayout),
		Status:    StatusOf(o.Status),
		ItemCount: len(o.Items),
		Total:     f.Format(o.Total),
	}
}

// NewDetail builds the order page view of o.
func NewDetail(o Order, f money.Formatter) Detail {
	d := Detail{
		ID:            o.ID,
		Number:        o.Number,
		PlacedOn:      o.CreatedAt.Format(DateLayout),
		Status:        StatusOf(o.Status),
		Subtotal:      f.Format(o.Total),
		Total:         f.Format(o.Total),
		PaymentStatus: string(o.Status),
		Email:         o.Email,
	}
	d.Items = make([]ItemRow, len(o.Items))
	for i, item := range o.Items {
		d.Items[i] = newItemRow(item, f)
	}
	if o.Address != nil {
		d.Address = addressLines(*o.Address)
	}
	return d
}

func newItemRow(item Item, f money.Formatter) ItemRow {
	price := decimal.Zero
	if item.PriceAtPurchase != nil {
		price = *item.PriceAtPurchase
	}
	qty := 1
	if item.Quantity != nil {
		qty = *item.Quantity
	}

	row := ItemRow{
		Key:       item.Key,
		Name:      item.ProductName,
		ImageURL:  item.ImageURL,
		Quantity:  qty,
		LineTotal: f.Format(price.Mul(decimal.NewFromInt(int64(qty)))),
	}
	if row.Name == "" {
		row.Name = "Unknown Product"
	}
	if item.ProductSlug != "" {
		row.Href = "/products/" + item.ProductSlug
	}
	if qty > 1 {
		row.Each = f.Format(price)
	}
	return row
}

func addressLines(a Address) []string {
	var lines []string
	for _, l := range []string{a.Name, a.Line1, a.Line2} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	var cityLine []string
	for _, part := range []string{a.City, a.Postcode} {
		if part != "" {
			cityLine = append(cityLine, part)
		}
	}
	if len(cityLine) > 0 {
		lines = append(lines, strings.Join(cityLine, ", "))
	}
	if a.Country != "" {
		lines = append(lines, a.Country)
	}
	return lines
}
