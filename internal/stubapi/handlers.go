package stubapi

import (
	"io"
	"net/http"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/checkout"
	"github.com/openboutik/storefront-go/internal/customer"
	"github.com/openboutik/storefront-go/internal/wire"
	"github.com/openboutik/storefront-go/internal/wishlist"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeRejection(w, http.StatusBadRequest, "unreadable request body")
		return nil, false
	}
	return data, true
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.sessionFor(r).snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, wire.EncodeCart(snap))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := wire.DecodeAddItem(data)
	if err != nil || req.ProductID == "" || req.Quantity < 1 {
		writeRejection(w, http.StatusBadRequest, "invalid add request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.catalog[req.ProductID]
	if !found {
		writeRejection(w, http.StatusBadRequest, "product not found")
		return
	}

	sess := s.sessionFor(r)
	current := 0
	if i, ok := sess.index[req.ProductID]; ok {
		current = sess.items[i].Quantity
	}
	if current+req.Quantity > p.Stock {
		writeRejection(w, http.StatusConflict, "not enough stock for "+p.Name)
		return
	}

	// Duplicate adds merge into the existing line.
	if i, ok := sess.index[req.ProductID]; ok {
		sess.items[i].Quantity += req.Quantity
	} else {
		sess.index[req.ProductID] = len(sess.items)
		sess.items = append(sess.items, cart.Item{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			SKU:       p.SKU,
			UnitPrice: p.UnitPrice,
			Quantity:  req.Quantity,
		})
	}
	writeJSON(w, http.StatusOK, wire.EncodeCart(sess.snapshot()))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	quantity, err := wire.DecodeQuantity(data)
	if err != nil || quantity < 1 {
		writeRejection(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}
	productID := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(r)
	i, ok := sess.index[productID]
	if !ok {
		writeRejection(w, http.StatusBadRequest, "item not in cart")
		return
	}
	if p, found := s.catalog[productID]; found && quantity > p.Stock {
		writeRejection(w, http.StatusConflict, "not enough stock for "+p.Name)
		return
	}
	sess.items[i].Quantity = quantity
	writeJSON(w, http.StatusOK, wire.EncodeCart(sess.snapshot()))
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(r)
	i, ok := sess.index[productID]
	if !ok {
		writeRejection(w, http.StatusBadRequest, "item not in cart")
		return
	}
	sess.items = append(sess.items[:i], sess.items[i+1:]...)
	sess.index = make(map[string]int, len(sess.items))
	for j, it := range sess.items {
		sess.index[it.ProductID] = j
	}
	writeJSON(w, http.StatusOK, wire.EncodeCart(sess.snapshot()))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(r)
	sess.items = nil
	sess.index = make(map[string]int)
	writeJSON(w, http.StatusOK, wire.EncodeCart(sess.snapshot()))
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := wire.DecodeOrderRequest(data)
	if err != nil {
		writeRejection(w, http.StatusBadRequest, "invalid order request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.profiles[token(r)]
	if fields := validateOrder(req, profile); len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity,
			wire.EncodeFieldErrors("validation failed", fields))
		return
	}

	sess := s.sessionFor(r)
	if len(sess.items) == 0 {
		writeRejection(w, http.StatusBadRequest, "cart is empty")
		return
	}

	var shipping cart.Amount
	if req.DeliveryMethod == string(checkout.DeliveryHome) {
		shipping = ShippingQuote
	}
	totals := cart.ComputeTotals(sess.items, shipping)

	order := &wire.Order{
		OrderNumber:    newOrderNumber(),
		Status:         "pending",
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		Items:          append([]cart.Item(nil), sess.items...),
		Total:          totals.Total,
	}
	s.orders[order.OrderNumber] = order

	writeJSON(w, http.StatusCreated, wire.EncodeOrderCreated(order.OrderNumber))
}

// validateOrder mirrors the production backend's field validation: the 422
// error map shape is the contract the verification form depends on.
func validateOrder(req wire.OrderRequest, profile customer.Profile) checkout.FieldErrors {
	fields := make(checkout.FieldErrors)
	add := func(field, msg string) {
		fields[field] = append(fields[field], msg)
	}

	if !req.TermsAccepted {
		add("terms_accepted", "terms must be accepted")
	}
	if req.Contact.Name == "" {
		add("name", "name is required")
	}
	if req.Contact.Email == "" {
		add("email", "email is required")
	}
	if req.Contact.Phone == "" {
		add("phone", "phone is required")
	}
	switch req.DeliveryMethod {
	case string(checkout.DeliveryHome):
		needAddress := req.ShippingAddress == nil || req.ShippingAddress.Address == "" || req.ShippingAddress.City == ""
		if req.UseSavedAddress && profile.HasAddress() {
			needAddress = false
		}
		if needAddress {
			add("address", "delivery address is required")
		}
	case string(checkout.DeliveryPickup):
	default:
		add("delivery_method", "unsupported delivery method")
	}
	switch req.PaymentMethod {
	case string(checkout.PaymentCashOnDelivery),
		string(checkout.PaymentMobileMoney),
		string(checkout.PaymentBankTransfer):
	default:
		add("payment_method", "unsupported payment method")
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	s.mu.Lock()
	order, ok := s.orders[number]
	s.mu.Unlock()

	if !ok {
		writeRejection(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, wire.EncodeOrder(order))
}

// requireAuth rejects guest requests; wishlist membership is user-scoped.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	_, ok := s.profiles[token(r)]
	s.mu.Unlock()
	if !ok {
		writeRejection(w, http.StatusUnauthorized, "sign in to use the wishlist")
		return false
	}
	return true
}

func (s *Server) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}
	s.mu.Lock()
	sess := s.sessionFor(r)
	entries := make([]wishlist.Entry, 0, len(sess.wishlist))
	for _, e := range sess.wishlist {
		entries = append(entries, e)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, wire.EncodeWishlist(entries))
}

func (s *Server) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}
	productID := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.catalog[productID]
	if !found {
		writeRejection(w, http.StatusBadRequest, "product not found")
		return
	}
	sess := s.sessionFor(r)
	sess.wishlist[productID] = wishlist.Entry{
		ProductID: p.ID,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		UnitPrice: p.UnitPrice,
	}
	writeJSON(w, http.StatusOK, wire.EncodeEnvelope(true, ""))
}

func (s *Server) handleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}
	productID := r.PathValue("id")

	s.mu.Lock()
	sess := s.sessionFor(r)
	delete(sess.wishlist, productID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, wire.EncodeEnvelope(true, ""))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	profile, ok := s.profiles[token(r)]
	s.mu.Unlock()

	if !ok {
		writeRejection(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, wire.EncodeProfile(&profile))
}
