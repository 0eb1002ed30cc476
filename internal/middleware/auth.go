package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/SLAWWWW/CommunityCompass/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Identity resolves the caller for mutating endpoints. A Bearer JWT issued
// at user creation is preferred; the X-User-ID header is accepted as the
// demo-client fallback. Below this middleware the identity is always an
// explicit parameter, never an ambient singleton.
func Identity(userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
					return
				}
				id, err := userService.ValidateJWT(parts[1])
				if err != nil {
					respondError(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				userID = id
			} else {
				userID = r.Header.Get("X-User-ID")
			}

			if userID == "" {
				respondError(w, "Authorization or X-User-ID header required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the caller's user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: message})
}
