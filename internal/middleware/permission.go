package middleware

import (
	"net/http"

	"remittance/internal/policy"
)

// RequirePermission rejects requests whose role may not perform action.
// It must run after Auth.
func RequirePermission(action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				writeMessage(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			role, _ := RoleFromContext(r.Context())
			if !policy.Allowed(role, action) {
				writeMessage(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
