package httpclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(captured **http.Request) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		*captured = r
		return &http.Response{StatusCode: http.StatusOK, Request: r}, nil
	})
}

func TestBearerAuth(t *testing.T) {
	var got *http.Request
	rt := Wrap(capture(&got), BearerAuth("demo-token"))

	req, err := http.NewRequest(http.MethodGet, "http://backend/cart", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "Bearer demo-token", got.Header.Get("Authorization"))
	// The original request is left untouched.
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestBearerAuthEmptyToken(t *testing.T) {
	var got *http.Request
	rt := Wrap(capture(&got), BearerAuth(""))

	req, err := http.NewRequest(http.MethodGet, "http://backend/cart", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestRequestID(t *testing.T) {
	var got *http.Request
	rt := Wrap(capture(&got), RequestID())

	req, err := http.NewRequest(http.MethodGet, "http://backend/cart", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestRequestIDPreservesExisting(t *testing.T) {
	var got *http.Request
	rt := Wrap(capture(&got), RequestID())

	req, err := http.NewRequest(http.MethodGet, "http://backend/cart", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "caller-supplied")
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "caller-supplied", got.Header.Get("X-Request-ID"))
}

func TestWrapOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return roundTripFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	var got *http.Request
	rt := Wrap(capture(&got), tag("outer"), tag("inner"))

	req, err := http.NewRequest(http.MethodGet, "http://backend/cart", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}
