// Package stubapi is an in-memory implementation of the storefront backend
// contract. It backs the integration tests and the local stub-backend
// binary, so the client can be exercised end to end without the production
// API: per-token cart sessions, stock caps that produce business-rule
// rejections, field-keyed 422 validation on orders, and order numbers.
package stubapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/customer"
	"github.com/openboutik/storefront-go/internal/wire"
	"github.com/openboutik/storefront-go/internal/wishlist"
	"github.com/openboutik/storefront-go/pkg/httpmiddleware"
)

// ShippingQuote is the flat delivery cost the stub quotes on every
// non-empty cart.
const ShippingQuote cart.Amount = 5000

// Product is a catalog entry with a stock cap. Requests that would exceed
// the cap are rejected as a business rule, mirroring production behaviour.
type Product struct {
	ID        string
	Name      string
	ImageURL  string
	SKU       string
	UnitPrice cart.Amount
	Stock     int
}

type session struct {
	items    []cart.Item
	index    map[string]int
	wishlist map[string]wishlist.Entry
}

func newSession() *session {
	return &session{
		index:    make(map[string]int),
		wishlist: make(map[string]wishlist.Entry),
	}
}

// Server holds the in-memory state. Sessions are keyed by bearer token; the
// empty token is the shared guest session.
type Server struct {
	mu       sync.Mutex
	catalog  map[string]Product
	sessions map[string]*session
	profiles map[string]customer.Profile
	orders   map[string]*wire.Order
}

// New creates a stub backend with the given catalog.
func New(catalog []Product) *Server {
	s := &Server{
		catalog:  make(map[string]Product, len(catalog)),
		sessions: make(map[string]*session),
		profiles: make(map[string]customer.Profile),
		orders:   make(map[string]*wire.Order),
	}
	for _, p := range catalog {
		s.catalog[p.ID] = p
	}
	return s
}

// RegisterProfile associates a bearer token with an authenticated profile.
func (s *Server) RegisterProfile(token string, p customer.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Authenticated = true
	s.profiles[token] = p
}

// Handler returns the HTTP handler for the backend routes, wrapped with
// recovery and request-ID middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cart", s.handleGetCart)
	mux.HandleFunc("POST /cart/add", s.handleAddItem)
	mux.HandleFunc("PUT /cart/items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", s.handleRemoveItem)
	mux.HandleFunc("POST /cart/clear", s.handleClearCart)
	mux.HandleFunc("POST /orders", s.handleCreateOrder)
	mux.HandleFunc("GET /orders/{number}", s.handleGetOrder)
	mux.HandleFunc("GET /wishlist", s.handleGetWishlist)
	mux.HandleFunc("POST /wishlist/{id}", s.handleAddWishlist)
	mux.HandleFunc("DELETE /wishlist/{id}", s.handleRemoveWishlist)
	mux.HandleFunc("GET /profile", s.handleGetProfile)

	return httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.RequestID(),
	)
}

// token extracts the bearer token; empty means guest.
func token(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if t, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return t
	}
	return ""
}

// sessionFor returns the session for the request's token, creating it on
// first use. Caller must hold s.mu.
func (s *Server) sessionFor(r *http.Request) *session {
	t := token(r)
	sess, ok := s.sessions[t]
	if !ok {
		sess = newSession()
		s.sessions[t] = sess
	}
	return sess
}

// snapshot renders the session cart in wire shape. Caller must hold s.mu.
func (sess *session) snapshot() *cart.Snapshot {
	snap := &cart.Snapshot{
		Items: make([]cart.Item, len(sess.items)),
	}
	copy(snap.Items, sess.items)
	var shipping cart.Amount
	if len(sess.items) > 0 {
		shipping = ShippingQuote
	}
	totals := cart.ComputeTotals(snap.Items, shipping)
	snap.Subtotal = totals.Subtotal
	snap.Shipping = totals.Shipping
	snap.Total = totals.Total
	return snap
}

func newOrderNumber() string {
	return "OB-" + strings.ToUpper(uuid.NewString()[:8])
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeRejection(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, wire.EncodeEnvelope(false, message))
}
