package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/checkout"
	"github.com/openboutik/storefront-go/internal/wire"
)

var _ checkout.OrderGateway = (*Client)(nil)

// CreateOrder places an order from the server-side cart. A 422 response
// becomes *checkout.ValidationError carrying the backend's field-keyed
// error map; business rejections become *cart.RejectedError.
func (c *Client) CreateOrder(ctx context.Context, draft checkout.OrderDraft) (*checkout.Confirmation, error) {
	data, status, err := c.do(ctx, http.MethodPost, "/orders", wire.EncodeOrderDraft(draft))
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
		created, err := wire.DecodeOrderCreated(data)
		if err != nil {
			return nil, err
		}
		return &checkout.Confirmation{OrderNumber: created.OrderNumber}, nil
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case status == http.StatusUnprocessableEntity:
		fields, err := wire.DecodeFieldErrors(data)
		if err != nil {
			return nil, errors.Wrap(err, "order validation response")
		}
		return nil, &checkout.ValidationError{Fields: fields}
	case status == http.StatusBadRequest, status == http.StatusConflict:
		env, err := wire.DecodeEnvelope(data)
		if err != nil || env.Message == "" {
			return nil, errors.Errorf("order rejected with status %d", status)
		}
		return nil, &cart.RejectedError{Message: env.Message}
	default:
		return nil, errors.Errorf("unexpected status %d", status)
	}
}

// GetOrder fetches an order by its number, used by the order-history view
// after confirmation.
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*wire.Order, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/orders/"+orderNumber, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
		return wire.DecodeOrder(data)
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case status == http.StatusNotFound:
		return nil, errors.Errorf("order %q not found", orderNumber)
	default:
		return nil, errors.Errorf("unexpected status %d", status)
	}
}
