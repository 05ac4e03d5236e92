// Package httpclient provides composable http.RoundTripper middleware for
// outbound API calls: bearer auth injection, request IDs, and structured
// request logging.
package httpclient

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Middleware wraps a RoundTripper with additional behaviour.
type Middleware func(http.RoundTripper) http.RoundTripper

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Wrap applies middlewares to base. The first middleware in the list is the
// outermost: it sees the request first and the response last.
func Wrap(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// New builds an http.Client with an instrumented transport and the given
// middlewares. The timeout covers the whole exchange; a zero timeout means
// no client-level limit.
func New(timeout time.Duration, mws ...Middleware) *http.Client {
	base := otelhttp.NewTransport(http.DefaultTransport)
	return &http.Client{
		Timeout:   timeout,
		Transport: Wrap(base, mws...),
	}
}

// BearerAuth sets the Authorization header on every request. An empty token
// leaves requests untouched (guest session).
func BearerAuth(token string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if token == "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}

// RequestID assigns each outbound request a unique X-Request-ID, preserved
// when the caller already set one.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("X-Request-ID") != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("X-Request-ID", uuid.New().String())
			return next.RoundTrip(r)
		})
	}
}

// LogRequests logs every exchange with the context logger: method, path,
// status, and duration. Transport failures log at error level.
func LogRequests() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			lg := zctx.From(r.Context())
			start := time.Now()
			resp, err := next.RoundTrip(r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				lg.Error("request failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			lg.Debug("request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
