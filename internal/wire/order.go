package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/checkout"
)

// EncodeOrderDraft builds the POST /orders request body. The shipping
// address block is omitted for pickup orders and when the saved profile
// address is reused.
func EncodeOrderDraft(draft checkout.OrderDraft) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("delivery_method")
	e.Str(string(draft.DeliveryMethod))
	e.FieldStart("contact")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(draft.Contact.Name)
	e.FieldStart("email")
	e.Str(draft.Contact.Email)
	e.FieldStart("phone")
	e.Str(draft.Contact.Phone)
	e.ObjEnd()
	if draft.ShippingAddress != nil {
		e.FieldStart("shipping_address")
		e.ObjStart()
		e.FieldStart("address")
		e.Str(draft.ShippingAddress.Address)
		e.FieldStart("city")
		e.Str(draft.ShippingAddress.City)
		e.FieldStart("postal_code")
		e.Str(draft.ShippingAddress.PostalCode)
		e.ObjEnd()
	}
	e.FieldStart("use_saved_address")
	e.Bool(draft.UseSavedAddress)
	e.FieldStart("payment_method")
	e.Str(string(draft.PaymentMethod))
	e.FieldStart("terms_accepted")
	e.Bool(true)
	e.ObjEnd()
	return e.Bytes()
}

// OrderRequest is the decoded POST /orders body, used by the stub backend.
type OrderRequest struct {
	DeliveryMethod  string
	Contact         checkout.Contact
	ShippingAddress *checkout.ShippingAddress
	UseSavedAddress bool
	PaymentMethod   string
	TermsAccepted   bool
}

// DecodeOrderRequest parses a POST /orders request body.
func DecodeOrderRequest(data []byte) (OrderRequest, error) {
	var req OrderRequest
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "delivery_method":
			s, err := d.Str()
			req.DeliveryMethod = s
			return err
		case "contact":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "name":
					s, err := d.Str()
					req.Contact.Name = s
					return err
				case "email":
					s, err := d.Str()
					req.Contact.Email = s
					return err
				case "phone":
					s, err := d.Str()
					req.Contact.Phone = s
					return err
				default:
					return d.Skip()
				}
			})
		case "shipping_address":
			addr := &checkout.ShippingAddress{}
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "address":
					s, err := d.Str()
					addr.Address = s
					return err
				case "city":
					s, err := d.Str()
					addr.City = s
					return err
				case "postal_code":
					s, err := d.Str()
					addr.PostalCode = s
					return err
				default:
					return d.Skip()
				}
			}); err != nil {
				return err
			}
			req.ShippingAddress = addr
			return nil
		case "use_saved_address":
			b, err := d.Bool()
			req.UseSavedAddress = b
			return err
		case "payment_method":
			s, err := d.Str()
			req.PaymentMethod = s
			return err
		case "terms_accepted":
			b, err := d.Bool()
			req.TermsAccepted = b
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return req, errors.Wrap(err, "decode order request")
	}
	return req, nil
}

// OrderCreated is the success payload of POST /orders.
type OrderCreated struct {
	OrderNumber string
}

// DecodeOrderCreated parses the {success, data:{order_number}} envelope.
func DecodeOrderCreated(data []byte) (*OrderCreated, error) {
	var (
		created OrderCreated
		success bool
	)
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "success":
			b, err := d.Bool()
			success = b
			return err
		case "data":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "order_number":
					s, err := d.Str()
					created.OrderNumber = s
					return err
				default:
					return d.Skip()
				}
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode order response")
	}
	if !success || created.OrderNumber == "" {
		return nil, errors.New("order response missing order number")
	}
	return &created, nil
}

// EncodeOrderCreated renders the POST /orders success envelope. Stub backend
// side of DecodeOrderCreated.
func EncodeOrderCreated(orderNumber string) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(true)
	e.FieldStart("data")
	e.ObjStart()
	e.FieldStart("order_number")
	e.Str(orderNumber)
	e.ObjEnd()
	e.ObjEnd()
	return e.Bytes()
}

// Order is the GET /orders/{order_number} detail payload.
type Order struct {
	OrderNumber    string
	Status         string
	DeliveryMethod string
	PaymentMethod  string
	Items          []cart.Item
	Total          cart.Amount
	TotalFormatted string
}

// DecodeOrder parses an order detail payload.
func DecodeOrder(data []byte) (*Order, error) {
	var o Order
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "order_number":
			s, err := d.Str()
			o.OrderNumber = s
			return err
		case "status":
			s, err := d.Str()
			o.Status = s
			return err
		case "delivery_method":
			s, err := d.Str()
			o.DeliveryMethod = s
			return err
		case "payment_method":
			s, err := d.Str()
			o.PaymentMethod = s
			return err
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeCartItem(d)
				if err != nil {
					return err
				}
				o.Items = append(o.Items, item)
				return nil
			})
		case "total":
			n, err := d.Int64()
			o.Total = cart.Amount(n)
			return err
		case "total_formatted":
			s, err := d.Str()
			o.TotalFormatted = s
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode order detail")
	}
	return &o, nil
}

// EncodeOrder renders an order detail payload for the stub backend.
func EncodeOrder(o *Order) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("order_number")
	e.Str(o.OrderNumber)
	e.FieldStart("status")
	e.Str(o.Status)
	e.FieldStart("delivery_method")
	e.Str(o.DeliveryMethod)
	e.FieldStart("payment_method")
	e.Str(o.PaymentMethod)
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		encodeCartItem(&e, item)
	}
	e.ArrEnd()
	e.FieldStart("total")
	e.Int64(int64(o.Total))
	e.FieldStart("total_formatted")
	e.Str(o.Total.Format())
	e.ObjEnd()
	return e.Bytes()
}
