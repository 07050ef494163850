package middleware

import (
	"context"
	"net/http"
	"strings"
)

const (
	// SessionCookie is the cookie carrying the customer's cart session token.
	SessionCookie = "vitrine_session"

	// SessionContextKey is the context key for the session token.
	SessionContextKey contextKey = "session"
)

// Session extracts the customer's session token from the Authorization
// header (Bearer) or the session cookie and places it on the request
// context. Requests without a session are rejected; the storefront cannot
// address a cart without one.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				token = c.Value
			}
		}
		if token == "" {
			http.Error(w, "session required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession retrieves the session token from the context
func GetSession(ctx context.Context) string {
	if token, ok := ctx.Value(SessionContextKey).(string); ok {
		return token
	}
	return ""
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
