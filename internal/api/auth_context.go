package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cookbookapp/cookbook-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userIDKey is the context key for the authenticated user ID.
const userIDKey ctxKey = "userID"

// GetUserID returns the authenticated user ID from context.
// Returns a 401 error if the caller is not authenticated.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", huma.Error401Unauthorized("authentication required")
	}
	return userID, nil
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// authMiddleware validates Bearer tokens and stores the user ID in context.
// If no token is present or it is invalid, the request continues without a
// user; handlers that require auth reject via GetUserID.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			token := authHeader[7:]
			user, _, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := setUserID(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP picks the client address from forwarding headers.
// X-Forwarded-For may contain a chain; the first entry is the client.
func clientIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		if i := strings.IndexByte(xForwardedFor, ','); i >= 0 {
			return strings.TrimSpace(xForwardedFor[:i])
		}
		return xForwardedFor
	}
	return xRealIP
}
