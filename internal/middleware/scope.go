package middleware

import (
	"net/http"

	"github.com/blogback/blogback/internal/auth"
)

// RequireAbility returns middleware that enforces token abilities.
// Must be applied after Auth middleware.
// If multiple abilities are provided, having ANY of them is sufficient.
func RequireAbility(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthenticated, UnauthenticatedMessage)
				return
			}

			for _, ability := range required {
				if authCtx.Can(ability) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, CodeForbidden, "Invalid ability provided.")
		})
	}
}
