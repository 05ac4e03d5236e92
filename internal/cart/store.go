package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// RejectedError signals a business-rule rejection from the backend (for
// example out-of-stock) with a message suitable for direct display.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Result is the uniform outcome of a store mutation. Mutations never panic
// and never return raw errors to views: failures resolve to OK=false with a
// displayable message, and local state stays consistent with the server.
type Result struct {
	OK      bool
	Message string
}

// Gateway defines the backend operations the store depends on. Every
// mutation returns the full cart snapshot the server holds afterwards.
type Gateway interface {
	FetchCart(ctx context.Context) (*Snapshot, error)
	AddItem(ctx context.Context, productID string, quantity int) (*Snapshot, error)
	UpdateItemQuantity(ctx context.Context, productID string, quantity int) (*Snapshot, error)
	RemoveItem(ctx context.Context, productID string) (*Snapshot, error)
	ClearCart(ctx context.Context) (*Snapshot, error)
}

// cartWideKey sequences operations that affect the whole cart (refresh,
// clear) rather than a single product.
const cartWideKey = ""

// Store is the process-wide cart state shared by every view. All access is
// synchronized; mutation methods suspend at their network call and reconcile
// the response under lock.
//
// Ordering contract: operations on the same product resolve in issuance
// order. Each request records a monotonically increasing sequence number per
// product at issue time; a response is applied only when no newer request
// for that product has been issued since, so a stale response can never
// overwrite a later intent (last write wins by issue order, not by response
// arrival order). Superseded responses are discarded, not aborted: the
// backend operations are idempotent.
type Store struct {
	gw Gateway

	mu       sync.RWMutex
	items    []Item
	index    map[string]int
	quote    Amount // last server shipping quote for delivery
	hasQuote bool
	inflight int
	nextSeq  uint64
	issued   map[string]uint64

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore creates an empty cart store backed by the given gateway. Call
// Refresh to hydrate it from the server.
func NewStore(gw Gateway) *Store {
	return &Store{
		gw:     gw,
		index:  make(map[string]int),
		issued: make(map[string]uint64),
		subs:   make(map[int]func()),
	}
}

// Refresh replaces local state with the server cart. Used on mount and as
// the recovery path after failures.
func (s *Store) Refresh(ctx context.Context) Result {
	seq := s.begin(cartWideKey)
	snap, err := s.gw.FetchCart(ctx)
	if err != nil {
		s.finish(cartWideKey, seq, nil)
		return Failure(ctx, "refresh cart", err)
	}
	s.finish(cartWideKey, seq, snap)
	return Result{OK: true}
}

// Add sends a create/increment request for the product. The server merges
// duplicates: adding an already-present product increments its quantity
// rather than creating a second line.
func (s *Store) Add(ctx context.Context, productID string, quantity int) Result {
	if quantity < 1 {
		return Result{Message: "quantity must be at least 1"}
	}
	seq := s.begin(productID)
	snap, err := s.gw.AddItem(ctx, productID, quantity)
	if err != nil {
		s.finish(productID, seq, nil)
		return Failure(ctx, "add to cart", err)
	}
	s.finish(productID, seq, snap)
	return Result{OK: true}
}

// UpdateQuantity sets the quantity of an existing line. Values below 1 are
// rejected without a network call: the quantity floor is 1, and removal is
// a distinct explicit operation.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) Result {
	if quantity < 1 {
		return Result{Message: "quantity must be at least 1"}
	}
	seq := s.begin(productID)
	snap, err := s.gw.UpdateItemQuantity(ctx, productID, quantity)
	if err != nil {
		s.finish(productID, seq, nil)
		return Failure(ctx, "update quantity", err)
	}
	s.finish(productID, seq, snap)
	return Result{OK: true}
}

// Remove deletes the line for the product.
func (s *Store) Remove(ctx context.Context, productID string) Result {
	seq := s.begin(productID)
	snap, err := s.gw.RemoveItem(ctx, productID)
	if err != nil {
		s.finish(productID, seq, nil)
		return Failure(ctx, "remove from cart", err)
	}
	s.finish(productID, seq, snap)
	return Result{OK: true}
}

// Clear empties the cart on the server and locally. Called exactly once
// after a successful order placement.
func (s *Store) Clear(ctx context.Context) Result {
	seq := s.begin(cartWideKey)
	snap, err := s.gw.ClearCart(ctx)
	if err != nil {
		s.finish(cartWideKey, seq, nil)
		return Failure(ctx, "clear cart", err)
	}
	s.finish(cartWideKey, seq, snap)
	return Result{OK: true}
}

// Replace applies an already-fetched snapshot wholesale, e.g. during
// session hydration when the caller fetched the cart itself.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	s.replaceLocked(snap)
	s.mu.Unlock()
	s.notify()
}

// Items returns a copy of the current cart lines in server order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the line for the product, if present.
func (s *Store) Get(productID string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[productID]
	if !ok {
		return Item{}, false
	}
	return s.items[i], true
}

// Len returns the number of cart lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loading reports whether any mutation is in flight. Views use this as the
// double-click guard: disable submission controls while true.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// ShippingQuote returns the server-quoted delivery cost, or the default
// fallback when no quote has arrived yet. Pickup carts ignore this value.
func (s *Store) ShippingQuote() Amount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hasQuote {
		return s.quote
	}
	return DefaultShippingQuote
}

// Totals derives the current monetary summary using the given shipping
// cost. Callers pass zero for pickup and ShippingQuote() for delivery.
func (s *Store) Totals(shipping Amount) Totals {
	return ComputeTotals(s.Items(), shipping)
}

// Subscribe registers fn to run after every applied state change. The
// returned function cancels the subscription. fn runs outside the store
// lock and may read the store freely.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// begin records the issue sequence for a request on the given key and marks
// it in flight.
func (s *Store) begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.nextSeq++
	s.issued[key] = s.nextSeq
	return s.nextSeq
}

// finish reconciles a completed request. The snapshot is applied only when
// the request is still the latest issued for its key; superseded responses
// are dropped so the newer request's response remains authoritative. A nil
// snapshot (failed request) leaves local state untouched.
func (s *Store) finish(key string, seq uint64, snap *Snapshot) {
	s.mu.Lock()
	s.inflight--
	applied := false
	if snap != nil && s.issued[key] == seq {
		s.replaceLocked(snap)
		applied = true
	}
	s.mu.Unlock()
	if applied {
		s.notify()
	}
}

// replaceLocked swaps local state for the server snapshot wholesale. No
// merge arithmetic: the server already applied its business rules (stock
// caps, pricing) and merging locally would compound divergence.
func (s *Store) replaceLocked(snap *Snapshot) {
	s.items = make([]Item, len(snap.Items))
	copy(s.items, snap.Items)
	s.index = make(map[string]int, len(s.items))
	for i, it := range s.items {
		s.index[it.ProductID] = i
	}
	if snap.Shipping > 0 {
		s.quote = snap.Shipping
		s.hasQuote = true
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Failure maps a gateway error to a Result. Business-rule rejections carry
// their own message; anything else is logged and surfaced as a generic
// retryable failure with no partial state committed.
func Failure(ctx context.Context, op string, err error) Result {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return Result{Message: rej.Message}
	}
	zctx.From(ctx).Error("cart operation failed",
		zap.String("op", op),
		zap.Error(err),
	)
	return Result{Message: "something went wrong, please try again"}
}
