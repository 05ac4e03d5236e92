// Package wire implements the JSON codecs for the storefront backend
// protocol. Decoders are tolerant of unknown fields (the backend adds
// display-only variants freely) and strict about the shapes this client
// depends on.
package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/openboutik/storefront-go/internal/cart"
)

// DecodeCart parses a full cart snapshot as returned by GET /cart and every
// cart mutation endpoint.
func DecodeCart(data []byte) (*cart.Snapshot, error) {
	var snap cart.Snapshot
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeCartItem(d)
				if err != nil {
					return err
				}
				snap.Items = append(snap.Items, item)
				return nil
			})
		case "subtotal":
			n, err := d.Int64()
			snap.Subtotal = cart.Amount(n)
			return err
		case "shipping":
			n, err := d.Int64()
			snap.Shipping = cart.Amount(n)
			return err
		case "total":
			n, err := d.Int64()
			snap.Total = cart.Amount(n)
			return err
		case "subtotal_formatted":
			s, err := d.Str()
			snap.SubtotalFormatted = s
			return err
		case "shipping_formatted":
			s, err := d.Str()
			snap.ShippingFormatted = s
			return err
		case "total_formatted":
			s, err := d.Str()
			snap.TotalFormatted = s
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart snapshot")
	}
	return &snap, nil
}

func decodeCartItem(d *jx.Decoder) (cart.Item, error) {
	var item cart.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product_id":
			s, err := d.Str()
			item.ProductID = s
			return err
		case "name":
			s, err := d.Str()
			item.Name = s
			return err
		case "image_url":
			s, err := d.Str()
			item.ImageURL = s
			return err
		case "sku":
			s, err := d.Str()
			item.SKU = s
			return err
		case "unit_price":
			n, err := d.Int64()
			item.UnitPrice = cart.Amount(n)
			return err
		case "quantity":
			n, err := d.Int()
			item.Quantity = n
			return err
		default:
			return d.Skip()
		}
	})
	return item, err
}

// EncodeCart renders a cart snapshot in the backend wire format. Used by the
// stub backend; amounts carry server-formatted variants alongside the raw
// integers.
func EncodeCart(snap *cart.Snapshot) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range snap.Items {
		encodeCartItem(&e, item)
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Int64(int64(snap.Subtotal))
	e.FieldStart("shipping")
	e.Int64(int64(snap.Shipping))
	e.FieldStart("total")
	e.Int64(int64(snap.Total))
	e.FieldStart("subtotal_formatted")
	e.Str(snap.Subtotal.Format())
	e.FieldStart("shipping_formatted")
	e.Str(snap.Shipping.Format())
	e.FieldStart("total_formatted")
	e.Str(snap.Total.Format())
	e.ObjEnd()
	return e.Bytes()
}

func encodeCartItem(e *jx.Encoder, item cart.Item) {
	e.ObjStart()
	e.FieldStart("product_id")
	e.Str(item.ProductID)
	e.FieldStart("name")
	e.Str(item.Name)
	e.FieldStart("image_url")
	e.Str(item.ImageURL)
	e.FieldStart("sku")
	e.Str(item.SKU)
	e.FieldStart("unit_price")
	e.Int64(int64(item.UnitPrice))
	e.FieldStart("quantity")
	e.Int(item.Quantity)
	e.FieldStart("line_total")
	e.Int64(int64(item.LineTotal()))
	e.ObjEnd()
}

// EncodeAddItem builds the POST /cart/add request body.
func EncodeAddItem(productID string, quantity int) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("product_id")
	e.Str(productID)
	e.FieldStart("quantity")
	e.Int(quantity)
	e.ObjEnd()
	return e.Bytes()
}

// AddItemRequest is the decoded POST /cart/add body, used by the stub
// backend.
type AddItemRequest struct {
	ProductID string
	Quantity  int
}

// DecodeAddItem parses a POST /cart/add request body.
func DecodeAddItem(data []byte) (AddItemRequest, error) {
	var req AddItemRequest
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product_id":
			s, err := d.Str()
			req.ProductID = s
			return err
		case "quantity":
			n, err := d.Int()
			req.Quantity = n
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return req, errors.Wrap(err, "decode add item request")
	}
	return req, nil
}

// EncodeQuantity builds the PUT /cart/items/{id} request body.
func EncodeQuantity(quantity int) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("quantity")
	e.Int(quantity)
	e.ObjEnd()
	return e.Bytes()
}

// DecodeQuantity parses a PUT /cart/items/{id} request body.
func DecodeQuantity(data []byte) (int, error) {
	quantity := 0
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "quantity":
			n, err := d.Int()
			quantity = n
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return 0, errors.Wrap(err, "decode quantity request")
	}
	return quantity, nil
}
