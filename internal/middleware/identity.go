package middleware

import (
	"context"
	"net/http"
)

// OwnerIDKey is the context key for the authenticated owner ID.
const OwnerIDKey contextKey = "owner_id"

// OwnerIDHeader carries the owner identity asserted by the fronting
// gateway. Authentication itself happens upstream; this service only
// scopes data by the identity it is handed.
const OwnerIDHeader = "X-Owner-ID"

// Identity extracts the gateway-asserted owner ID into the request
// context. Requests without the header proceed as anonymous.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ownerID := r.Header.Get(OwnerIDHeader); ownerID != "" {
			ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// OwnerFromContext returns the owner ID from context, or nil for
// anonymous requests.
func OwnerFromContext(ctx context.Context) *string {
	if id, ok := ctx.Value(OwnerIDKey).(string); ok && id != "" {
		return &id
	}
	return nil
}

// RequireOwner rejects anonymous requests with 401. Applied to routes
// that operate on owner-scoped data.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if OwnerFromContext(r.Context()) == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
