package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/openboutik/storefront-go/internal/customer"
	"github.com/openboutik/storefront-go/internal/wire"
	"github.com/openboutik/storefront-go/internal/wishlist"
)

var (
	_ wishlist.Gateway = (*Client)(nil)
	_ customer.Gateway = (*Client)(nil)
)

// AddWishlistItem adds a product to the user's wishlist.
func (c *Client) AddWishlistItem(ctx context.Context, productID string) error {
	data, status, err := c.do(ctx, http.MethodPost, "/wishlist/"+productID, nil)
	if err != nil {
		return err
	}
	return wishlistResponse(data, status)
}

// RemoveWishlistItem removes a product from the user's wishlist.
func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) error {
	data, status, err := c.do(ctx, http.MethodDelete, "/wishlist/"+productID, nil)
	if err != nil {
		return err
	}
	return wishlistResponse(data, status)
}

// FetchWishlist retrieves the user's wishlist entries.
func (c *Client) FetchWishlist(ctx context.Context) ([]wishlist.Entry, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/wishlist", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
		return wire.DecodeWishlist(data)
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, errors.Errorf("unexpected status %d", status)
	}
}

func wishlistResponse(data []byte, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		env, err := wire.DecodeEnvelope(data)
		if err == nil && env.Message != "" {
			return errors.New(env.Message)
		}
		return errors.Errorf("unexpected status %d", status)
	}
}

// FetchProfile retrieves the authenticated customer profile. Guest sessions
// yield a zero profile rather than an error.
func (c *Client) FetchProfile(ctx context.Context) (*customer.Profile, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
		return wire.DecodeProfile(data)
	case status == http.StatusUnauthorized:
		return &customer.Profile{}, nil
	default:
		return nil, errors.Errorf("unexpected status %d", status)
	}
}
