// Package checkout orchestrates the Cart → Verification → Confirmed flow as
// an explicit finite-state machine, including the express pickup side-path
// for authenticated users with a phone number on file.
package checkout

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// DeliveryMethod selects how the order reaches the customer.
type DeliveryMethod string

const (
	// DeliveryHome ships the order to a customer-provided address.
	DeliveryHome DeliveryMethod = "delivery"
	// DeliveryPickup hands the order over in store; shipping cost is zero.
	DeliveryPickup DeliveryMethod = "pickup"
)

// PaymentMethod enumerates the accepted payment options.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMobileMoney    PaymentMethod = "mobile_money"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// Contact identifies the person placing the order. Pre-filled from the
// authenticated profile when available.
type Contact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// ShippingAddress is required only for home delivery. Authenticated users
// may skip it and reuse their saved profile address instead.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Session is the ephemeral checkout form state. It is never persisted; the
// flow rebuilds it per checkout attempt.
type Session struct {
	DeliveryMethod  DeliveryMethod  `json:"delivery_method" validate:"required,oneof=delivery pickup"`
	Contact         Contact         `json:"contact"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	UseSavedAddress bool            `json:"use_saved_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method" validate:"required,oneof=cash_on_delivery mobile_money bank_transfer"`
	TermsAccepted   bool            `json:"terms_accepted"`
}

// FieldErrors maps form field names to their error messages, matching the
// shape of the backend's 422 responses so inline rendering works the same
// for client-side and server-side failures.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// ValidationError is a field-level rejection, either produced locally before
// any network call or decoded from a 422 response.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// newValidate configures a validator with json-tag field names and the
// session-level rules that plain tags cannot express.
func newValidate() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(sessionStructValidation, Session{})
	return v
}

// sessionStructValidation enforces the cross-field rules: terms must be
// accepted, and home delivery needs a full address unless the saved profile
// address is being reused.
func sessionStructValidation(sl validatorv10.StructLevel) {
	s := sl.Current().Interface().(Session)

	if !s.TermsAccepted {
		sl.ReportError(s.TermsAccepted, "terms_accepted", "TermsAccepted", "accepted", "")
	}

	if s.DeliveryMethod == DeliveryHome && !s.UseSavedAddress {
		if s.ShippingAddress.Address == "" {
			sl.ReportError(s.ShippingAddress.Address, "address", "Address", "required_for_delivery", "")
		}
		if s.ShippingAddress.City == "" {
			sl.ReportError(s.ShippingAddress.City, "city", "City", "required_for_delivery", "")
		}
	}
}

// validateSession runs local validation and converts failures into the
// field-keyed error map the form renders from.
func validateSession(v *validatorv10.Validate, s Session) FieldErrors {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return FieldErrors{"": {"invalid form"}}
	}
	fe := make(FieldErrors, len(verrs))
	for _, f := range verrs {
		fe.add(f.Field(), fieldMessage(f))
	}
	return fe
}

func fieldMessage(f validatorv10.FieldError) string {
	switch f.Tag() {
	case "required", "required_for_delivery":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "unsupported value"
	case "accepted":
		return "you must accept the terms to continue"
	default:
		return "invalid value"
	}
}
