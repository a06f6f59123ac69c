package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Cheertaboi/coupon-management-service/internal/auth"
)

type adminKey struct{}

// RequireAdmin rejects requests without a valid admin bearer token and
// stores the verified claims in the request context.
func RequireAdmin(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.TrimSpace(header) == "" {
				deny(w, http.StatusUnauthorized, "Access Denied: No Token Provided")
				return
			}
			token, ok := bearerToken(header)
			if !ok {
				deny(w, http.StatusUnauthorized, "Invalid Token")
				return
			}

			claims, err := tokens.ValidateToken(token)
			switch {
			case errors.Is(err, auth.ErrTokenMissing):
				deny(w, http.StatusUnauthorized, "Access Denied: No Token Provided")
				return
			case errors.Is(err, auth.ErrTokenExpired):
				deny(w, http.StatusUnauthorized, "Token Expired. Please log in again.")
				return
			case err != nil:
				deny(w, http.StatusUnauthorized, "Invalid Token")
				return
			}

			if claims.Role != auth.RoleAdmin {
				deny(w, http.StatusForbidden, "Forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), adminKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromContext returns the claims set by RequireAdmin.
func AdminFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(adminKey{}).(*auth.Claims)
	return c, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func deny(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": code,
		"message":    message,
		"error":      http.StatusText(code),
		"data":       nil,
	})
}
