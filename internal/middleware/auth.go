package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/taskflow/taskflow-go/internal/crypto"
	"github.com/taskflow/taskflow-go/internal/model"
)

type contextKey string

const principalKey contextKey = "principal"

// UserResolver resolves a token subject to a known user. The second return
// value reports whether the user exists.
type UserResolver interface {
	Resolve(ctx context.Context, userID string) (model.Principal, bool, error)
}

// Auth returns middleware that validates a Bearer token from the
// Authorization header and resolves its subject to an existing user.
// Requests with a missing, invalid or expired token, or whose subject no
// longer exists, are rejected with 401.
func Auth(tokens *crypto.TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				writeAuthError(w, "invalid authorization format")
				return
			}

			subject, err := tokens.Validate(raw)
			if err != nil {
				if errors.Is(err, crypto.ErrTokenExpired) {
					writeAuthError(w, "token expired")
					return
				}
				writeAuthError(w, "invalid token")
				return
			}

			principal, ok, err := users.Resolve(r.Context(), subject)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "internal server error", "kind": "internal"})
				return
			}
			if !ok {
				writeAuthError(w, "could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the authenticated principal from the
// request context.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "kind": "unauthenticated"})
}
