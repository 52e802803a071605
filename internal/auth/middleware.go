package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yabzec/SnipHub/internal/model"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values we store.
type contextKey string

const userIDKey contextKey = "userID"

// UserResolver is the slice of the user repository the middleware needs to
// confirm that a token still belongs to a live account.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It expects an "Authorization: Bearer <token>" header, verifies the token's
// signature and expiry, then resolves the embedded user id against the store.
// The store lookup handles the case of a valid token for an account that has
// since been deleted (e.g. by the reaper). Every request pays that lookup;
// TODO: a short-lived identity cache would remove it once traffic warrants.
//
// On success the user id is bound into the request context for handlers to
// read via UserIDFromContext.
func RequireAuth(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeUnauthorized(w, "missing_token", "authorization header required")
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				writeUnauthorized(w, "invalid_token", "valid authentication required")
				return
			}

			if _, err := users.GetUserByID(r.Context(), userID); err != nil {
				// Token verified but the account is gone.
				writeUnauthorized(w, "unauthorized", "unknown account")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns ("", false) if the request did not pass RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// writeUnauthorized emits the standard error body without importing the
// handler package (which would create an import cycle).
func writeUnauthorized(w http.ResponseWriter, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errType,
		"message": message,
	})
}
