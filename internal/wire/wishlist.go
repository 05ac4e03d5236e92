package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/customer"
	"github.com/openboutik/storefront-go/internal/wishlist"
)

// DecodeWishlist parses the GET /wishlist payload.
func DecodeWishlist(data []byte) ([]wishlist.Entry, error) {
	var entries []wishlist.Entry
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var e wishlist.Entry
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "product_id":
						s, err := d.Str()
						e.ProductID = s
						return err
					case "name":
						s, err := d.Str()
						e.Name = s
						return err
					case "image_url":
						s, err := d.Str()
						e.ImageURL = s
						return err
					case "unit_price":
						n, err := d.Int64()
						e.UnitPrice = cart.Amount(n)
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				entries = append(entries, e)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode wishlist")
	}
	return entries, nil
}

// EncodeWishlist renders the GET /wishlist payload for the stub backend.
func EncodeWishlist(entries []wishlist.Entry) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, entry := range entries {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(entry.ProductID)
		e.FieldStart("name")
		e.Str(entry.Name)
		e.FieldStart("image_url")
		e.Str(entry.ImageURL)
		e.FieldStart("unit_price")
		e.Int64(int64(entry.UnitPrice))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}

// DecodeProfile parses the GET /profile payload.
func DecodeProfile(data []byte) (*customer.Profile, error) {
	var p customer.Profile
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "authenticated":
			b, err := d.Bool()
			p.Authenticated = b
			return err
		case "name":
			s, err := d.Str()
			p.Name = s
			return err
		case "email":
			s, err := d.Str()
			p.Email = s
			return err
		case "phone":
			s, err := d.Str()
			p.Phone = s
			return err
		case "address":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "address":
					s, err := d.Str()
					p.Address.Address = s
					return err
				case "city":
					s, err := d.Str()
					p.Address.City = s
					return err
				case "postal_code":
					s, err := d.Str()
					p.Address.PostalCode = s
					return err
				default:
					return d.Skip()
				}
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode profile")
	}
	return &p, nil
}

// EncodeProfile renders the GET /profile payload for the stub backend.
func EncodeProfile(p *customer.Profile) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("authenticated")
	e.Bool(p.Authenticated)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("email")
	e.Str(p.Email)
	e.FieldStart("phone")
	e.Str(p.Phone)
	e.FieldStart("address")
	e.ObjStart()
	e.FieldStart("address")
	e.Str(p.Address.Address)
	e.FieldStart("city")
	e.Str(p.Address.City)
	e.FieldStart("postal_code")
	e.Str(p.Address.PostalCode)
	e.ObjEnd()
	e.ObjEnd()
	return e.Bytes()
}
