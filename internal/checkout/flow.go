package checkout

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/customer"
)

// State names a position in the checkout flow. Every legal transition is an
// explicit method on Flow; there are no other ways to move between states.
type State string

const (
	// StateCart is the starting state: the customer reviews the cart and
	// picks a delivery method.
	StateCart State = "cart"
	// StateVerification shows the full contact/address/payment form.
	StateVerification State = "verification"
	// StateExpressConfirm is the one-click side-path for authenticated
	// pickup customers with a phone number on file.
	StateExpressConfirm State = "express_confirm"
	// StateConfirmed is terminal: the order exists and the cart is cleared.
	StateConfirmed State = "confirmed"
)

// Confirmation carries the outcome of a successful order placement.
type Confirmation struct {
	OrderNumber string
}

// OrderDraft is the payload handed to order creation. ShippingAddress is nil
// for pickup orders and for authenticated users reusing their saved address.
type OrderDraft struct {
	DeliveryMethod  DeliveryMethod
	Contact         Contact
	ShippingAddress *ShippingAddress
	UseSavedAddress bool
	PaymentMethod   PaymentMethod
}

// OrderGateway creates orders on the backend. A 422 response surfaces as
// *ValidationError; business rejections as *cart.RejectedError.
type OrderGateway interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (*Confirmation, error)
}

// Flow drives a single checkout attempt over the shared cart store. Totals
// shown at every state are recomputed live from the store, so a delivery
// method change in the cart stays consistent through confirmation.
type Flow struct {
	cart     *cart.Store
	orders   OrderGateway
	profile  customer.Profile
	validate *validatorv10.Validate

	mu           sync.Mutex
	state        State
	session      Session
	fieldErrs    FieldErrors
	confirmation *Confirmation
	cleared      bool
	busy         bool
}

// NewFlow starts a flow in StateCart. Contact fields are pre-filled from the
// profile when the user is authenticated.
func NewFlow(cartStore *cart.Store, orders OrderGateway, profile customer.Profile) *Flow {
	f := &Flow{
		cart:     cartStore,
		orders:   orders,
		profile:  profile,
		validate: newValidate(),
		state:    StateCart,
		session: Session{
			DeliveryMethod: DeliveryHome,
			PaymentMethod:  PaymentCashOnDelivery,
		},
	}
	if profile.Authenticated {
		f.session.Contact = Contact{
			Name:  profile.Name,
			Email: profile.Email,
			Phone: profile.Phone,
		}
	}
	return f
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns a copy of the current form state.
func (f *Flow) Session() Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// FieldErrors returns the per-field errors from the last failed validation,
// local or server-side.
func (f *Flow) FieldErrors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs
}

// Confirmation returns the placed order details once the flow reaches
// StateConfirmed, nil before that.
func (f *Flow) Confirmation() *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmation
}

// SetDeliveryMethod records the delivery choice. Allowed while reviewing the
// cart or filling the verification form; the choice feeds straight into
// Totals.
func (f *Flow) SetDeliveryMethod(m DeliveryMethod) cart.Result {
	if m != DeliveryHome && m != DeliveryPickup {
		return cart.Result{Message: "unsupported delivery method"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateCart && f.state != StateVerification {
		return cart.Result{Message: "delivery method can no longer be changed"}
	}
	f.session.DeliveryMethod = m
	return cart.Result{OK: true}
}

// Totals recomputes the monetary summary from the live cart store. Pickup
// costs nothing to ship; home delivery uses the server quote (or the default
// fallback until one arrives).
func (f *Flow) Totals() cart.Totals {
	f.mu.Lock()
	method := f.session.DeliveryMethod
	f.mu.Unlock()

	var shipping cart.Amount
	if method == DeliveryHome {
		shipping = f.cart.ShippingQuote()
	}
	return f.cart.Totals(shipping)
}

// ExpressEligible reports whether the express confirmation side-path is
// available: in-store pickup, authenticated, and a phone number on file.
func (f *Flow) ExpressEligible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expressEligibleLocked()
}

func (f *Flow) expressEligibleLocked() bool {
	return f.session.DeliveryMethod == DeliveryPickup &&
		f.profile.Authenticated &&
		f.profile.HasPhone()
}

// Proceed leaves the cart view. Eligible users land on the express
// confirmation dialog; everyone else gets the full verification form.
func (f *Flow) Proceed() cart.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateCart {
		return cart.Result{Message: "checkout already in progress"}
	}
	if f.cart.Len() == 0 {
		return cart.Result{Message: "your cart is empty"}
	}
	if f.expressEligibleLocked() {
		f.state = StateExpressConfirm
	} else {
		f.state = StateVerification
	}
	return cart.Result{OK: true}
}

// DeclineExpress falls through from the express dialog to the full
// verification form.
func (f *Flow) DeclineExpress() cart.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateExpressConfirm {
		return cart.Result{Message: "express checkout is not active"}
	}
	f.state = StateVerification
	return cart.Result{OK: true}
}

// AcceptExpress submits the minimal pickup order derived entirely from the
// authenticated profile, with payment forced to cash on delivery.
//
// Failure handling is deliberate rather than a silent fallback: a field
// validation rejection drops to the full verification form with the server's
// errors pre-populated, while transport or business failures keep the dialog
// open with a retryable message.
func (f *Flow) AcceptExpress(ctx context.Context) cart.Result {
	f.mu.Lock()
	if f.state != StateExpressConfirm {
		f.mu.Unlock()
		return cart.Result{Message: "express checkout is not active"}
	}
	if f.busy {
		f.mu.Unlock()
		return cart.Result{Message: "order submission already in progress"}
	}
	f.busy = true
	draft := OrderDraft{
		DeliveryMethod: DeliveryPickup,
		Contact: Contact{
			Name:  f.profile.Name,
			Email: f.profile.Email,
			Phone: f.profile.Phone,
		},
		PaymentMethod: PaymentCashOnDelivery,
	}
	f.mu.Unlock()

	conf, err := f.orders.CreateOrder(ctx, draft)

	f.mu.Lock()
	f.busy = false
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			f.fieldErrs = ve.Fields
			f.state = StateVerification
			f.mu.Unlock()
			return cart.Result{Message: "please review your details"}
		}
		f.mu.Unlock()
		return cart.Failure(ctx, "express checkout", err)
	}
	f.mu.Unlock()

	f.complete(ctx, conf)
	return cart.Result{OK: true}
}

// Submit places the order from the verification form. Validation runs
// client-side first: a rejected session never reaches the network. Server
// 422 responses keep the user on the form with per-field errors; any other
// failure surfaces a generic message without advancing state.
func (f *Flow) Submit(ctx context.Context, session Session) cart.Result {
	f.mu.Lock()
	if f.state != StateVerification {
		f.mu.Unlock()
		return cart.Result{Message: "verification form is not active"}
	}
	if f.busy {
		f.mu.Unlock()
		return cart.Result{Message: "order submission already in progress"}
	}

	// Reusing the saved address is only open to authenticated users who
	// actually have one on file.
	if session.UseSavedAddress && !(f.profile.Authenticated && f.profile.HasAddress()) {
		session.UseSavedAddress = false
	}
	f.session = session

	if fe := validateSession(f.validate, session); fe != nil {
		f.fieldErrs = fe
		f.mu.Unlock()
		return cart.Result{Message: "please correct the highlighted fields"}
	}
	f.fieldErrs = nil
	f.busy = true

	draft := OrderDraft{
		DeliveryMethod:  session.DeliveryMethod,
		Contact:         session.Contact,
		UseSavedAddress: session.UseSavedAddress,
		PaymentMethod:   session.PaymentMethod,
	}
	if session.DeliveryMethod == DeliveryHome && !session.UseSavedAddress {
		addr := session.ShippingAddress
		draft.ShippingAddress = &addr
	}
	f.mu.Unlock()

	conf, err := f.orders.CreateOrder(ctx, draft)

	f.mu.Lock()
	f.busy = false
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			f.fieldErrs = ve.Fields
			f.mu.Unlock()
			return cart.Result{Message: "please correct the highlighted fields"}
		}
		f.mu.Unlock()
		return cart.Failure(ctx, "place order", err)
	}
	f.mu.Unlock()

	f.complete(ctx, conf)
	return cart.Result{OK: true}
}

// complete finalizes a placed order: clear the cart exactly once, then move
// to StateConfirmed. Clearing happens after creation succeeded and before
// the confirmed state becomes observable, so an interrupted navigation can
// neither lose the order nor resurrect a stale cart.
func (f *Flow) complete(ctx context.Context, conf *Confirmation) {
	f.mu.Lock()
	doClear := !f.cleared
	f.cleared = true
	f.mu.Unlock()

	if doClear {
		// Non-fatal: the order exists regardless; a failed clear resolves
		// on the next refresh.
		f.cart.Clear(ctx)
	}

	f.mu.Lock()
	f.confirmation = conf
	f.state = StateConfirmed
	f.mu.Unlock()
}
