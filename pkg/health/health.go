// Package health provides liveness and readiness probe endpoints for the
// stub backend. Registered checks run periodically in the background; probe
// handlers only read the latest recorded outcome.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
)

// CheckFunc reports nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	lastErr atomic.Pointer[error]
}

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.fn(checkCtx)
	c.lastErr.Store(&err)
}

func (c *check) err() error {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Health manages readiness state and periodic checks for a service.
type Health struct {
	ready atomic.Bool

	mu     sync.Mutex
	checks []*check
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Health in the not-ready state. Call SetReady(true) once
// initialization finished.
func New() *Health {
	return &Health{}
}

// AddCheck registers a readiness check. Register before Start.
func (h *Health) AddCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, &check{name: name, timeout: timeout, fn: fn})
}

// Start runs all checks once immediately, then at the given interval until
// the context is cancelled or Stop is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	h.mu.Lock()
	ctx, h.cancel = context.WithCancel(ctx)
	checks := h.checks
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			for _, c := range checks {
				c.run(ctx)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels the background check loop and waits for it to exit.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// SetReady flips the readiness gate. Readiness requires both the gate and
// every registered check passing.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint reports process liveness: it answers ok as long as the
// process can serve HTTP.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeProbe(w, http.StatusOK, probeResponse{Status: "ok"})
}

// ReadyEndpoint reports readiness: the gate must be open and every check's
// last run must have passed.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := h.checks
	h.mu.Unlock()

	resp := probeResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
	status := http.StatusOK
	if !h.ready.Load() {
		resp.Status = "not ready"
		status = http.StatusServiceUnavailable
	}
	for _, c := range checks {
		if err := c.err(); err != nil {
			resp.Checks[c.name] = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks[c.name] = "ok"
		}
	}
	writeProbe(w, status, resp)
}

func writeProbe(w http.ResponseWriter, status int, resp probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// GoroutineCountCheck fails when the process exceeds the given goroutine
// count, a cheap leak signal.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("too many goroutines: %d > %d", n, limit)
		}
		return nil
	}
}
