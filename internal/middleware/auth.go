package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "jwt"

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier checks a raw session token.
type TokenVerifier interface {
	Verify(token string) (crypto.Identity, error)
}

// SessionAuth returns middleware that requires a valid session token in the
// jwt cookie and stores the verified identity in the request context.
func SessionAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				writeJSONError(w, http.StatusUnauthorized, "Token not found in cookies")
				return
			}

			id, err := tokens.Verify(cookie.Value)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id crypto.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (crypto.Identity, bool) {
	id, ok := ctx.Value(identityKey).(crypto.Identity)
	return id, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
