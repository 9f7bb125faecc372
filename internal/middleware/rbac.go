package middleware

import (
	"net/http"
)

// RequireRole allows the request only when the user holds the named role
func RequireRole(role string) Middleware {
	return RequireAnyRole(role)
}

// RequireAnyRole allows the request when the user holds at least one of the
// named roles. Must run after Auth.
func RequireAnyRole(roles ...string) Middleware {
	required := map[string]bool{}
	for _, role := range roles {
		required[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			held, ok := RolesFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range held {
				if required[role] {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
