// Package wishlist provides a toggle-based membership set keyed by product
// ID. Membership is user-scoped server-side; callers must verify the user is
// authenticated before toggling; the store itself does not gate on auth.
package wishlist

import (
	"context"
	"sync"

	"github.com/openboutik/storefront-go/internal/cart"
)

// Entry is a wishlist member with a denormalized product snapshot for
// display.
type Entry struct {
	ProductID string
	Name      string
	ImageURL  string
	UnitPrice cart.Amount
}

// Gateway defines the backend operations for wishlist membership.
type Gateway interface {
	AddWishlistItem(ctx context.Context, productID string) error
	RemoveWishlistItem(ctx context.Context, productID string) error
	FetchWishlist(ctx context.Context) ([]Entry, error)
}

// Store holds wishlist membership with O(1) lookup, shared by every product
// card rendered at once. Toggles apply optimistically and roll back when the
// backend rejects the change.
type Store struct {
	gw Gateway

	mu      sync.RWMutex
	entries map[string]Entry

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore creates an empty wishlist store backed by the given gateway.
func NewStore(gw Gateway) *Store {
	return &Store{
		gw:      gw,
		entries: make(map[string]Entry),
		subs:    make(map[int]func()),
	}
}

// Refresh replaces local membership with the server state.
func (s *Store) Refresh(ctx context.Context) error {
	entries, err := s.gw.FetchWishlist(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = make(map[string]Entry, len(entries))
	for _, e := range entries {
		s.entries[e.ProductID] = e
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Toggle flips membership for the product: present becomes absent and vice
// versa. The local flip happens first so heart icons respond immediately;
// a backend failure rolls it back to last-known-good.
func (s *Store) Toggle(ctx context.Context, entry Entry) cart.Result {
	s.mu.Lock()
	_, present := s.entries[entry.ProductID]
	if present {
		delete(s.entries, entry.ProductID)
	} else {
		s.entries[entry.ProductID] = entry
	}
	s.mu.Unlock()
	s.notify()

	var err error
	if present {
		err = s.gw.RemoveWishlistItem(ctx, entry.ProductID)
	} else {
		err = s.gw.AddWishlistItem(ctx, entry.ProductID)
	}
	if err != nil {
		// Roll back the optimistic flip.
		s.mu.Lock()
		if present {
			s.entries[entry.ProductID] = entry
		} else {
			delete(s.entries, entry.ProductID)
		}
		s.mu.Unlock()
		s.notify()
		return cart.Failure(ctx, "toggle wishlist", err)
	}
	return cart.Result{OK: true}
}

// IsInWishlist reports membership in O(1).
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[productID]
	return ok
}

// Entries returns a copy of the current membership.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// Len returns the number of wishlist entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers fn to run after every membership change. The returned
// function cancels the subscription.
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
