package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/wire"
)

var _ cart.Gateway = (*Client)(nil)

// FetchCart retrieves the current server cart.
func (c *Client) FetchCart(ctx context.Context) (*cart.Snapshot, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	return cartResponse(data, status)
}

// AddItem creates or increments a cart line. The server merges duplicate
// product IDs into one line.
func (c *Client) AddItem(ctx context.Context, productID string, quantity int) (*cart.Snapshot, error) {
	data, status, err := c.do(ctx, http.MethodPost, "/cart/add", wire.EncodeAddItem(productID, quantity))
	if err != nil {
		return nil, err
	}
	return cartResponse(data, status)
}

// UpdateItemQuantity sets the quantity of an existing line.
func (c *Client) UpdateItemQuantity(ctx context.Context, productID string, quantity int) (*cart.Snapshot, error) {
	data, status, err := c.do(ctx, http.MethodPut, "/cart/items/"+productID, wire.EncodeQuantity(quantity))
	if err != nil {
		return nil, err
	}
	return cartResponse(data, status)
}

// RemoveItem deletes a cart line.
func (c *Client) RemoveItem(ctx context.Context, productID string) (*cart.Snapshot, error) {
	data, status, err := c.do(ctx, http.MethodDelete, "/cart/items/"+productID, nil)
	if err != nil {
		return nil, err
	}
	return cartResponse(data, status)
}

// ClearCart empties the server cart.
func (c *Client) ClearCart(ctx context.Context) (*cart.Snapshot, error) {
	data, status, err := c.do(ctx, http.MethodPost, "/cart/clear", nil)
	if err != nil {
		return nil, err
	}
	return cartResponse(data, status)
}

// cartResponse maps a cart endpoint response to a snapshot or a domain
// error. Every successful cart mutation returns the full snapshot.
func cartResponse(data []byte, status int) (*cart.Snapshot, error) {
	switch {
	case status >= 200 && status < 300:
		return wire.DecodeCart(data)
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		env, err := wire.DecodeEnvelope(data)
		if err != nil || env.Message == "" {
			return nil, errors.Errorf("cart request rejected with status %d", status)
		}
		return nil, &cart.RejectedError{Message: env.Message}
	default:
		return nil, errors.Errorf("unexpected status %d", status)
	}
}
