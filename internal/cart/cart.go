// Package cart maintains a client-side shadow of the server cart. The server
// is authoritative: every mutation round-trips to the backend and replaces
// local state wholesale with the returned snapshot. Totals are always derived
// from line items, never stored on their own.
package cart

import "strconv"

// Amount is a monetary value in the smallest currency unit. XOF has no
// subdivision, so amounts are whole numbers.
type Amount int64

// DefaultShippingQuote is the shipping cost assumed for home delivery until
// the server has supplied a quote.
const DefaultShippingQuote Amount = 5000

// Format renders the amount with thousands separators and the currency
// suffix, e.g. "25 000 F CFA". Server-formatted strings take precedence when
// present; this is the fallback for locally recomputed totals.
func (a Amount) Format() string {
	neg := a < 0
	if neg {
		a = -a
	}
	s := strconv.FormatInt(int64(a), 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + " F CFA"
}

// Item is a single cart line. Display attributes are denormalized copies
// taken from the product catalog at add-time.
type Item struct {
	ProductID string
	Name      string
	ImageURL  string
	SKU       string
	UnitPrice Amount
	Quantity  int
}

// LineTotal is always recomputed from unit price and quantity to avoid
// drift against independently stored values.
func (i Item) LineTotal() Amount {
	return i.UnitPrice * Amount(i.Quantity)
}

// Snapshot is the full server-returned representation of a cart, used to
// replace local state wholesale after any mutation.
type Snapshot struct {
	Items    []Item
	Subtotal Amount
	Shipping Amount
	Total    Amount

	SubtotalFormatted string
	ShippingFormatted string
	TotalFormatted    string
}

// Totals holds the derived monetary summary of a cart.
type Totals struct {
	Subtotal Amount
	Shipping Amount
	Total    Amount
}

// ComputeTotals derives the monetary summary for the given items and
// shipping cost. Subtotal and total are recomputed from scratch on every
// call: total == subtotal + shipping holds by construction.
func ComputeTotals(items []Item, shipping Amount) Totals {
	var subtotal Amount
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}
