package middleware

import (
	"context"
	"net/http"
	"strings"

	"hireflow/internal/auth"
	"hireflow/internal/repository"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
	rolesKey  contextKey = "roles"
)

// Auth validates the bearer token, checks the session is still live and
// loads the user's roles into the request context.
func Auth(authSvc *auth.Service, sessionRepo *repository.SessionRepository, userRepo *repository.UserRepository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims, err := authSvc.ValidateToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			// Logout deletes the session, which kills the token before expiry.
			session, err := sessionRepo.GetByJTI(claims.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			if session == nil || session.TokenType != "access" {
				writeError(w, http.StatusUnauthorized, "session is no longer valid")
				return
			}

			roles, err := userRepo.GetUserRoles(claims.UserID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "role lookup failed")
				return
			}
			roleNames := make([]string, len(roles))
			for i, role := range roles {
				roleNames[i] = role.Name
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			ctx = context.WithValue(ctx, rolesKey, roleNames)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user's ID
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

// EmailFromContext returns the authenticated user's email
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}

// RolesFromContext returns the authenticated user's role names
func RolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(rolesKey).([]string)
	return roles, ok
}
