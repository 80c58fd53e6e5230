package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/snaplink/snaplink/internal/metrics"
	"github.com/snaplink/snaplink/internal/ratelimit"
)

// RateLimit returns middleware that applies a fixed-window limit per
// client IP. scope namespaces the counters so different route classes
// (create vs redirect) get independent windows. When the limiter's
// backing store is down requests pass through unlimited. A nil
// recorder discards metrics.
func RateLimit(limiter *ratelimit.Limiter, scope string, rec metrics.Recorder) func(http.Handler) http.Handler {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := scope + ":" + clientIP(r)

			if !limiter.Allow(r.Context(), identifier) {
				rec.IncRateLimited()
				retryAfter := limiter.RetryAfter(r.Context(), identifier)
				setRateLimitHeaders(w, limiter.Limit(), 0, retryAfter)
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			remaining := limiter.Remaining(r.Context(), identifier)
			setRateLimitHeaders(w, limiter.Limit(), remaining, limiter.RetryAfter(r.Context(), identifier))
			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int, reset time.Duration) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	if remaining >= 0 && remaining <= limit {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	}
	if reset > 0 {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))
	}
}

// clientIP extracts the client address: first X-Forwarded-For entry,
// then X-Real-IP, then the peer address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.IndexByte(first, ','); idx >= 0 {
			first = first[:idx]
		}
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
