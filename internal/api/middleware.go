/**
 * @description
 * Authentication middleware. Extracts the bearer token from the
 * Authorization header, validates it, and stores the authenticated user in
 * the request context. A second gate restricts admin routes to users with
 * the admin role.
 */

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/glabank/banking-service/internal/app"
	"github.com/glabank/banking-service/internal/domain"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// userFromContext returns the authenticated user placed there by requireAuth.
func userFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// requireAuth rejects requests without a valid bearer token.
func (h *Handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin must be chained after requireAuth.
func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok || user.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
