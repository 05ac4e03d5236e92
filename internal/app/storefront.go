// Package app wires the API client and the stores into one storefront
// session. Every view consumes the same store instances; none holds a
// private copy that could desynchronize.
package app

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/openboutik/storefront-go/internal/api"
	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/checkout"
	"github.com/openboutik/storefront-go/internal/customer"
	"github.com/openboutik/storefront-go/internal/wishlist"
)

// Storefront is the single wiring point for a client session.
type Storefront struct {
	API      *api.Client
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Profile  customer.Profile
}

// New builds a storefront session from the given configuration. The stores
// start empty; call Hydrate to populate them from the server.
func New(cfg *Config) (*Storefront, error) {
	client, err := api.NewClient(api.Config{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create api client")
	}
	return &Storefront{
		API:      client,
		Cart:     cart.NewStore(client),
		Wishlist: wishlist.NewStore(client),
	}, nil
}

// Hydrate populates profile, cart, and wishlist from the server
// concurrently. A guest session simply gets an empty wishlist; any other
// failure aborts the hydration.
func (s *Storefront) Hydrate(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.API.FetchProfile(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch profile")
		}
		s.Profile = *p
		return nil
	})
	g.Go(func() error {
		snap, err := s.API.FetchCart(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch cart")
		}
		s.Cart.Replace(snap)
		return nil
	})
	g.Go(func() error {
		if err := s.Wishlist.Refresh(ctx); err != nil && !errors.Is(err, api.ErrUnauthorized) {
			return errors.Wrap(err, "fetch wishlist")
		}
		return nil
	})

	return g.Wait()
}

// BeginCheckout starts a checkout flow over the shared cart store.
func (s *Storefront) BeginCheckout() *checkout.Flow {
	return checkout.NewFlow(s.Cart, s.API, s.Profile)
}

// ToggleWishlist flips wishlist membership. The auth gate lives here, at
// the call site: the wishlist store itself never checks authentication.
func (s *Storefront) ToggleWishlist(ctx context.Context, entry wishlist.Entry) cart.Result {
	if !s.Profile.Authenticated {
		return cart.Result{Message: "sign in to save items to your wishlist"}
	}
	return s.Wishlist.Toggle(ctx, entry)
}
