package middleware

import (
	"context"
	"net/http"
	"strings"

	"mediafeed-server/pkg/jwt"
)

type contextKey string

const UserIDKey contextKey = "userID"

// IdentityMiddleware resolves the bearer access token into a user id on the
// request context. It never rejects: a missing, malformed or expired token
// leaves the request anonymous and every operation decides for itself whether
// anonymous is acceptable.
func IdentityMiddleware(accessSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwt.ValidateToken(parts[1], accessSecret)
			if err != nil {
				// Swallowed: bad tokens behave exactly like no token.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the resolved user id, or "" for anonymous requests.
func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
