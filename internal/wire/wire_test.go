package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/checkout"
)

func TestDecodeCart(t *testing.T) {
	body := []byte(`{
		"items": [
			{
				"product_id": "wax-001",
				"name": "Wax print fabric",
				"image_url": "https://cdn.example.sn/wax-001.jpg",
				"sku": "WAX-6Y-IND",
				"unit_price": 20000,
				"quantity": 3,
				"line_total": 60000
			}
		],
		"subtotal": 60000,
		"shipping": 5000,
		"total": 65000,
		"subtotal_formatted": "60 000 F CFA",
		"shipping_formatted": "5 000 F CFA",
		"total_formatted": "65 000 F CFA",
		"currency": "XOF"
	}`)

	snap, err := DecodeCart(body)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, cart.Item{
		ProductID: "wax-001",
		Name:      "Wax print fabric",
		ImageURL:  "https://cdn.example.sn/wax-001.jpg",
		SKU:       "WAX-6Y-IND",
		UnitPrice: 20000,
		Quantity:  3,
	}, snap.Items[0])
	assert.Equal(t, cart.Amount(60000), snap.Subtotal)
	assert.Equal(t, cart.Amount(5000), snap.Shipping)
	assert.Equal(t, cart.Amount(65000), snap.Total)
	assert.Equal(t, "65 000 F CFA", snap.TotalFormatted)
}

func TestDecodeCartEmpty(t *testing.T) {
	snap, err := DecodeCart([]byte(`{"items":[],"subtotal":0,"shipping":0,"total":0}`))
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.Total)
}

func TestDecodeCartMalformed(t *testing.T) {
	_, err := DecodeCart([]byte(`{"items": "nope"}`))
	assert.Error(t, err)
}

func TestEncodeCartRoundTrip(t *testing.T) {
	items := []cart.Item{{ProductID: "7", Name: "Bogolan", UnitPrice: 20000, Quantity: 1}}
	totals := cart.ComputeTotals(items, 5000)
	out := EncodeCart(&cart.Snapshot{
		Items:    items,
		Subtotal: totals.Subtotal,
		Shipping: totals.Shipping,
		Total:    totals.Total,
	})

	snap, err := DecodeCart(out)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, cart.Amount(25000), snap.Total)
	assert.Equal(t, "25 000 F CFA", snap.TotalFormatted)
}

func TestDecodeOrderCreated(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "created",
			body: `{"success": true, "data": {"order_number": "OB-7F3A21BC", "eta": "2d"}}`,
			want: "OB-7F3A21BC",
		},
		{
			name:    "success without order number",
			body:    `{"success": true, "data": {}}`,
			wantErr: true,
		},
		{
			name:    "failure envelope on a 2xx",
			body:    `{"success": false, "message": "try again"}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := DecodeOrderCreated([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, created.OrderNumber)
		})
	}
}

func TestOrderDraftRoundTrip(t *testing.T) {
	draft := checkout.OrderDraft{
		DeliveryMethod: checkout.DeliveryHome,
		Contact: checkout.Contact{
			Name:  "Awa Diop",
			Email: "awa@example.sn",
			Phone: "+221771234567",
		},
		ShippingAddress: &checkout.ShippingAddress{
			Address:    "12 Rue Félix Faure",
			City:       "Dakar",
			PostalCode: "11000",
		},
		PaymentMethod: checkout.PaymentMobileMoney,
	}

	req, err := DecodeOrderRequest(EncodeOrderDraft(draft))
	require.NoError(t, err)
	assert.Equal(t, "delivery", req.DeliveryMethod)
	assert.Equal(t, "Awa Diop", req.Contact.Name)
	require.NotNil(t, req.ShippingAddress)
	assert.Equal(t, "Dakar", req.ShippingAddress.City)
	assert.Equal(t, "mobile_money", req.PaymentMethod)
	// The flow only submits sessions that passed the terms check.
	assert.True(t, req.TermsAccepted)
}

func TestOrderDraftPickupOmitsAddress(t *testing.T) {
	draft := checkout.OrderDraft{
		DeliveryMethod: checkout.DeliveryPickup,
		Contact:        checkout.Contact{Name: "Moussa Ndiaye", Email: "moussa@example.sn", Phone: "+221770000000"},
		PaymentMethod:  checkout.PaymentCashOnDelivery,
	}
	req, err := DecodeOrderRequest(EncodeOrderDraft(draft))
	require.NoError(t, err)
	assert.Nil(t, req.ShippingAddress)
}

func TestDecodeFieldErrors(t *testing.T) {
	body := []byte(`{
		"message": "validation failed",
		"errors": {
			"phone": ["this field is required"],
			"address": ["this field is required", "must be within the delivery zone"]
		}
	}`)
	fields, err := DecodeFieldErrors(body)
	require.NoError(t, err)
	assert.Equal(t, checkout.FieldErrors{
		"phone":   {"this field is required"},
		"address": {"this field is required", "must be within the delivery zone"},
	}, fields)

	// A 422 body with no usable field map is a protocol error, not an empty
	// validation result.
	_, err = DecodeFieldErrors([]byte(`{"message": "validation failed"}`))
	assert.Error(t, err)
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"success": false, "message": "not enough stock for Woven basket"}`))
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "not enough stock for Woven basket", env.Message)
}

func TestDecodeProfile(t *testing.T) {
	body := []byte(`{
		"authenticated": true,
		"name": "Awa Diop",
		"email": "awa@example.sn",
		"phone": "+221771234567",
		"address": {"address": "12 Rue Félix Faure", "city": "Dakar", "postal_code": "11000"},
		"loyalty_tier": "gold"
	}`)
	p, err := DecodeProfile(body)
	require.NoError(t, err)
	assert.True(t, p.Authenticated)
	assert.True(t, p.HasPhone())
	assert.True(t, p.HasAddress())
	assert.Equal(t, "Dakar", p.Address.City)
}

func TestDecodeWishlist(t *testing.T) {
	body := []byte(`{"items": [
		{"product_id": "wax-001", "name": "Wax print fabric", "unit_price": 20000},
		{"product_id": "shea-002", "name": "Shea butter", "unit_price": 4500}
	]}`)
	entries, err := DecodeWishlist(body)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "wax-001", entries[0].ProductID)
	assert.Equal(t, cart.Amount(4500), entries[1].UnitPrice)

	entries, err = DecodeWishlist([]byte(`{"items": []}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
