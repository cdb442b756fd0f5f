package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/theratreat/therabook-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const authUserKey contextKey = "auth_user"

// AuthUser is the identity the auth middleware attaches to the request
// context: the user's id and role from the validated session.
type AuthUser struct {
	ID   primitive.ObjectID
	Role string
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// RequireAuth validates the bearer session token and puts the resolved
// identity on the request context. 401 on a missing or invalid token.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			http.Error(w, "Missing authorization token", http.StatusUnauthorized)
			return
		}

		data, ok, err := services.ValidateSession(token)
		if err != nil || !ok {
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		userID, err := primitive.ObjectIDFromHex(data.UserID)
		if err != nil {
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey, AuthUser{ID: userID, Role: data.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns 403 unless the authenticated user has one of the
// given roles. Must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "Missing authorization token", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Insufficient permissions", http.StatusForbidden)
		})
	}
}

// UserFromContext returns the authenticated user set by RequireAuth.
func UserFromContext(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(authUserKey).(AuthUser)
	return user, ok
}

// WithUser returns a context carrying an authenticated user. Used by
// tests to exercise handlers without the full middleware chain.
func WithUser(ctx context.Context, user AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey, user)
}
