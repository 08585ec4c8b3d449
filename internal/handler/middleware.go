package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deep020206/FUTURE-FS-01/internal/metrics"
	"github.com/deep020206/FUTURE-FS-01/internal/ratelimit"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; object-src 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

const rateLimitMessage = "Too many requests, please try again later."

// RateLimiter limits requests per client IP over a sliding window.
type RateLimiter struct {
	store             ratelimit.Store
	limit             int
	window            time.Duration
	trustedProxyCount int
	logger            *slog.Logger
	metrics           *metrics.Metrics
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimitLogger sets the logger used for store errors.
func WithRateLimitLogger(logger *slog.Logger) RateLimiterOption {
	return func(rl *RateLimiter) { rl.logger = logger }
}

// WithRateLimitMetrics counts rejections.
func WithRateLimitMetrics(m *metrics.Metrics) RateLimiterOption {
	return func(rl *RateLimiter) { rl.metrics = m }
}

// WithTrustedProxyCount sets how many reverse proxies append to X-Forwarded-For.
// Zero ignores the header.
func WithTrustedProxyCount(n int) RateLimiterOption {
	return func(rl *RateLimiter) { rl.trustedProxyCount = n }
}

// NewRateLimiter allows limit requests per window for each client.
// X-Forwarded-For is ignored unless WithTrustedProxyCount is set.
func NewRateLimiter(store ratelimit.Store, limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.logger == nil {
		rl.logger = slog.Default()
	}
	return rl
}

// Middleware returns an http.Handler that enforces rate limits.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.clientIP(r)

		res, err := rl.store.Allow(r.Context(), ip, rl.limit, rl.window)
		if err != nil {
			// fail open
			rl.logger.WarnContext(r.Context(), "rate limit store unavailable", "error", err, "client_ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(rl.limit-res.Count, 0)))

		if !res.Allowed {
			rl.metrics.IncrementRateLimited()
			w.Header().Set("Retry-After", retryAfterSeconds(res.RetryAfter))
			writeError(w, http.StatusTooManyRequests, rateLimitMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP extracts the real client IP, reading from the rightmost trusted
// proxy position in X-Forwarded-For to prevent spoofing.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		idx := len(parts) - rl.trustedProxyCount
		if idx >= 0 && idx < len(parts) {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
