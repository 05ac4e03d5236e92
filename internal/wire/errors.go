package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/openboutik/storefront-go/internal/checkout"
)

// Envelope is the generic {success, message} response used by wishlist
// toggles and business-rule rejections.
type Envelope struct {
	Success bool
	Message string
}

// DecodeEnvelope parses a generic success/message envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "success":
			b, err := d.Bool()
			env.Success = b
			return err
		case "message":
			s, err := d.Str()
			env.Message = s
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return env, errors.Wrap(err, "decode envelope")
	}
	return env, nil
}

// EncodeEnvelope renders a generic success/message envelope.
func EncodeEnvelope(success bool, message string) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(success)
	if message != "" {
		e.FieldStart("message")
		e.Str(message)
	}
	e.ObjEnd()
	return e.Bytes()
}

// DecodeFieldErrors parses a 422 body carrying a field-keyed error map:
// {"message": ..., "errors": {"field": ["msg", ...]}}. The verification
// form renders these inline; the shape is a hard contract with the backend.
func DecodeFieldErrors(data []byte) (checkout.FieldErrors, error) {
	fields := make(checkout.FieldErrors)
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "errors":
			return d.Obj(func(d *jx.Decoder, field string) error {
				return d.Arr(func(d *jx.Decoder) error {
					msg, err := d.Str()
					if err != nil {
						return err
					}
					fields[field] = append(fields[field], msg)
					return nil
				})
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode field errors")
	}
	if len(fields) == 0 {
		return nil, errors.New("422 body without field errors")
	}
	return fields, nil
}

// EncodeFieldErrors renders a 422 body from a field-keyed error map.
func EncodeFieldErrors(message string, fields checkout.FieldErrors) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("message")
	e.Str(message)
	e.FieldStart("errors")
	e.ObjStart()
	for field, msgs := range fields {
		e.FieldStart(field)
		e.ArrStart()
		for _, m := range msgs {
			e.Str(m)
		}
		e.ArrEnd()
	}
	e.ObjEnd()
	e.ObjEnd()
	return e.Bytes()
}
