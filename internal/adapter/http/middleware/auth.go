package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/corebank-io/corebank/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CallerContextKey is the context key for the authenticated customer id
	CallerContextKey ContextKey = "caller"
)

// AuthMiddleware verifies the bearer token and stores the calling customer's
// id in the request context. Every account-scoped operation reads it from
// there for the ownership check.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CallerContextKey, claims.CustomerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FixedCaller injects a static caller id. Used when authentication is
// disabled; the caller id then comes from the X-Customer-ID header so local
// setups can still exercise ownership checks.
func FixedCaller() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerID := r.Header.Get("X-Customer-ID")
			if callerID != "" {
				r = r.WithContext(context.WithValue(r.Context(), CallerContextKey, callerID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFromContext extracts the authenticated customer id from context.
func CallerFromContext(ctx context.Context) (string, bool) {
	callerID, ok := ctx.Value(CallerContextKey).(string)
	return callerID, ok && callerID != ""
}
