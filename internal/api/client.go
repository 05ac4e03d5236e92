// Package api implements the typed HTTP client for the storefront backend.
// It is the single transport boundary: HTTP statuses are mapped to domain
// errors here, so the stores and the checkout flow never see raw responses.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"

	"github.com/openboutik/storefront-go/pkg/httpclient"
)

// ErrUnauthorized is returned when the backend rejects the session token.
var ErrUnauthorized = errors.New("unauthorized")

// Config holds the client connection settings.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.example.com/api/v1".
	BaseURL string
	// Token is the bearer token of the authenticated session. Empty for
	// guests.
	Token string
	// Timeout bounds each exchange. Zero disables the client-level limit.
	Timeout time.Duration
}

// Client is the remote API client shared by all stores.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient builds a Client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	return &Client{
		baseURL: u,
		http: httpclient.New(cfg.Timeout,
			httpclient.BearerAuth(cfg.Token),
			httpclient.RequestID(),
			httpclient.LogRequests(),
		),
	}, nil
}

// do executes one exchange and returns the response body and status code.
// Only transport-level failures produce an error; status handling is the
// caller's job.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	u := c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "read response")
	}
	return data, resp.StatusCode, nil
}
