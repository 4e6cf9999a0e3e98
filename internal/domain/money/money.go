// Package money formats decimal amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is the currency symbol used when none is configured.
const DefaultSymbol = "£"

// Formatter renders amounts as a currency symbol followed by the amount
// rounded to two decimal places with thousands separators.
type Formatter struct {
	Symbol string
}

// Format renders d, e.g. "£1,234.50" or "-£3.00".
func (f Formatter) Format(d decimal.Decimal) string {
	symbol := f.Symbol
	if symbol == "" {
		symbol = DefaultSymbol
	}

	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + symbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
