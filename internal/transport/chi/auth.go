package chi

import (
	"context"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type userCtxKey struct{}

// UserID returns the authenticated user id from the context, or "" when the
// request carried no identity.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens and
// maps each configured API key to a user identity stored in the request
// context. If users is empty, authentication is disabled and the identity is
// taken from the X-User-ID header (development mode).
func BearerAuthMiddleware(users map[string]string) func(http.Handler) http.Handler {
	validKeys := make(map[string]string, len(users))
	for key, id := range users {
		if key != "" && id != "" {
			validKeys[key] = id
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled — trust the X-User-ID header
		if len(validKeys) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), userCtxKey{}, r.Header.Get("X-User-ID"))
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			userID, ok := validKeys[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
