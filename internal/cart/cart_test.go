package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountFormat(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{0, "0 F CFA"},
		{500, "500 F CFA"},
		{5000, "5 000 F CFA"},
		{25000, "25 000 F CFA"},
		{1234567, "1 234 567 F CFA"},
		{-4500, "-4 500 F CFA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.amount.Format())
	}
}

func TestItemLineTotal(t *testing.T) {
	item := Item{ProductID: "7", UnitPrice: 20000, Quantity: 3}
	assert.Equal(t, Amount(60000), item.LineTotal())
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		shipping Amount
		want     Totals
	}{
		{
			name: "single line with delivery quote",
			items: []Item{
				{ProductID: "7", UnitPrice: 20000, Quantity: 1},
			},
			shipping: 5000,
			want:     Totals{Subtotal: 20000, Shipping: 5000, Total: 25000},
		},
		{
			name: "quantity update reflected in totals",
			items: []Item{
				{ProductID: "7", UnitPrice: 20000, Quantity: 3},
			},
			shipping: 5000,
			want:     Totals{Subtotal: 60000, Shipping: 5000, Total: 65000},
		},
		{
			name: "multiple lines, pickup",
			items: []Item{
				{ProductID: "a", UnitPrice: 4500, Quantity: 2},
				{ProductID: "b", UnitPrice: 12500, Quantity: 1},
			},
			shipping: 0,
			want:     Totals{Subtotal: 21500, Shipping: 0, Total: 21500},
		},
		{
			name:     "empty cart",
			items:    nil,
			shipping: 0,
			want:     Totals{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.shipping)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Subtotal+got.Shipping, got.Total)
		})
	}
}
