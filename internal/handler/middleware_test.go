package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/deep020206/FUTURE-FS-01/internal/metrics"
	"github.com/deep020206/FUTURE-FS-01/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSecurityHeaders_SetsAllHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders(inner).ServeHTTP(rec, req)

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"X-XSS-Protection":       "0",
	}
	for name, want := range headers {
		got := rec.Header().Get(name)
		if got != want {
			t.Errorf("%s: want %q, got %q", name, want, got)
		}
	}

	csp := rec.Header().Get("Content-Security-Policy")
	for _, d := range []string{"default-src", "frame-ancestors 'none'"} {
		if !strings.Contains(csp, d) {
			t.Errorf("CSP missing directive %q: %s", d, csp)
		}
	}
	if hsts := rec.Header().Get("Strict-Transport-Security"); !strings.Contains(hsts, "max-age=") {
		t.Errorf("HSTS missing max-age: %q", hsts)
	}
}

func TestSecurityHeaders_PassesThrough(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders(inner).ServeHTTP(rec, req)

	if !called {
		t.Error("inner handler was not called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}

func newTestLimiter(t *testing.T, limit int, opts ...RateLimiterOption) http.Handler {
	t.Helper()
	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return NewRateLimiter(store, limit, time.Minute, opts...).Middleware(inner)
}

func doFrom(h http.Handler, remoteAddr, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/contact", nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	handler := newTestLimiter(t, 10)

	for i := 0; i < 10; i++ {
		rec := doFrom(handler, "192.168.1.1:12345", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	handler := newTestLimiter(t, 3, WithRateLimitMetrics(m))

	for i := 0; i < 3; i++ {
		doFrom(handler, "10.0.0.1:1234", "")
	}

	rec := doFrom(handler, "10.0.0.1:1234", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Too many requests, please try again later." {
		t.Errorf("unexpected error body %q", body["error"])
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("expected remaining 0, got %q", got)
	}
	if got := testutil.ToFloat64(m.RateLimited); got != 1 {
		t.Errorf("expected 1 rejection counted, got %v", got)
	}
}

func TestRateLimiter_DifferentIPsAreIndependent(t *testing.T) {
	handler := newTestLimiter(t, 1)

	if rec := doFrom(handler, "10.0.0.1:1234", ""); rec.Code != http.StatusOK {
		t.Fatalf("first IP: expected 200, got %d", rec.Code)
	}
	if rec := doFrom(handler, "10.0.0.2:1234", ""); rec.Code != http.StatusOK {
		t.Errorf("second IP: expected 200, got %d", rec.Code)
	}
}

func TestRateLimiter_ReturnsRetryAfterHeader(t *testing.T) {
	handler := newTestLimiter(t, 1)

	doFrom(handler, "10.0.0.1:1234", "")
	rec := doFrom(handler, "10.0.0.1:1234", "")

	ra := rec.Header().Get("Retry-After")
	secs, err := strconv.Atoi(ra)
	if err != nil {
		t.Fatalf("Retry-After not an integer: %q", ra)
	}
	if secs < 1 || secs > 61 {
		t.Errorf("Retry-After out of range: %d", secs)
	}
}

func TestRateLimiter_XForwardedFor_RightmostTrusted(t *testing.T) {
	handler := newTestLimiter(t, 1, WithTrustedProxyCount(1))

	// same proxy, different clients
	if rec := doFrom(handler, "127.0.0.1:80", "203.0.113.5"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doFrom(handler, "127.0.0.1:80", "203.0.113.6"); rec.Code != http.StatusOK {
		t.Errorf("different client behind proxy should not share a window, got %d", rec.Code)
	}
}

func TestRateLimiter_XForwardedFor_SpoofedLeftmostIgnored(t *testing.T) {
	handler := newTestLimiter(t, 1, WithTrustedProxyCount(1))

	doFrom(handler, "127.0.0.1:80", "1.1.1.1, 203.0.113.5")
	rec := doFrom(handler, "127.0.0.1:80", "2.2.2.2, 203.0.113.5")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("spoofed leftmost entry must not bypass the limit, got %d", rec.Code)
	}
}

func TestRateLimiter_DefaultIgnoresForwardedFor(t *testing.T) {
	handler := newTestLimiter(t, 1)

	allowed := 0
	for i := 0; i < 5; i++ {
		rec := doFrom(handler, "203.0.113.9:5555", "10.0.0."+strconv.Itoa(i))
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("rotating X-Forwarded-For from one address: want 1 allowed, got %d", allowed)
	}
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewRateLimiter(failingStore{}, 1, time.Minute).Middleware(inner)

	for i := 0; i < 3; i++ {
		if rec := doFrom(handler, "10.0.0.1:1234", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 when store fails, got %d", i+1, rec.Code)
		}
	}
}
