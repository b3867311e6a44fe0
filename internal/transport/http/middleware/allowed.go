package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/electroworld/auth-service/internal/domain"
)

// DenialAuditor records failed role checks. May be nil.
type DenialAuditor interface {
	AccessDenied(ctx context.Context, userID, role, route string)
}

// AllowedTo admits the authenticated user only if its role is in roles.
// Assumes Protect has already run.
func AllowedTo(roles domain.RoleSet, audit DenialAuditor, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				// Middleware ordering issue (Protect not applied)
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			if !roles.Contains(u.Role) {
				if audit != nil {
					audit.AccessDenied(r.Context(), u.ID, u.Role.String(), routePattern(r))
				}
				writeErr(w, r, domain.ErrNotAllowed())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
