package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/snaplink/snaplink/internal/ratelimit"
	"github.com/snaplink/snaplink/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Error("expected request ID in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != captured {
		t.Errorf("response header %q does not match context value %q", got, captured)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != "upstream-id-42" {
		t.Errorf("expected upstream request ID kept, got %q", captured)
	}
}

func TestIdentityExtraction(t *testing.T) {
	var owner *string
	handler := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner = OwnerFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(OwnerIDHeader, "owner-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if owner == nil || *owner != "owner-7" {
		t.Errorf("expected owner-7 in context, got %v", owner)
	}

	owner = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if owner != nil {
		t.Errorf("expected anonymous request to carry no owner, got %v", *owner)
	}
}

func TestRequireOwner(t *testing.T) {
	handler := Identity(RequireOwner(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous request, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(OwnerIDHeader, "owner-7")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for identified request, got %d", rec.Code)
	}
}

func TestRateLimitEnforcement(t *testing.T) {
	store := testutil.NewMemoryStore()
	limiter := ratelimit.New(store, testLogger(), 2, time.Minute)
	handler := RateLimit(limiter, "create", nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/links", nil)
	req.RemoteAddr = "203.0.113.7:1234"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("request %d: missing limit header", i+1)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
}

func TestRateLimitScopesAreIndependent(t *testing.T) {
	store := testutil.NewMemoryStore()
	limiter := ratelimit.New(store, testLogger(), 1, time.Minute)
	createHandler := RateLimit(limiter, "create", nil)(okHandler())
	redirectHandler := RateLimit(limiter, "redirect", nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"

	rec := httptest.NewRecorder()
	createHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", rec.Code)
	}

	// Same IP, different scope: its own window.
	rec = httptest.NewRecorder()
	redirectHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("redirect: expected independent window, got %d", rec.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.SetAvailable(false)
	limiter := ratelimit.New(store, testLogger(), 1, time.Minute)
	handler := RateLimit(limiter, "create", nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected pass-through with store down, got %d", i+1, rec.Code)
		}
	}
}

func TestClientIPPreference(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{"peer only", "203.0.113.7:1234", "", "", "203.0.113.7"},
		{"forwarded-for wins", "10.0.0.1:80", "198.51.100.4, 10.0.0.1", "10.0.0.2", "198.51.100.4"},
		{"real-ip fallback", "10.0.0.1:80", "", "198.51.100.9", "198.51.100.9"},
		{"no port", "203.0.113.7", "", "", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerPreservesStatus(t *testing.T) {
	handler := Logger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status passed through, got %d", rec.Code)
	}
}

func TestRecovererConvertsPanic(t *testing.T) {
	handler := Recoverer(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
}
