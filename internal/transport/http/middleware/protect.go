package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/electroworld/auth-service/internal/domain"
)

// Authenticator resolves a raw bearer token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (domain.User, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Protect requires Authorization: Bearer <token>, resolves it to a live user
// whose password has not changed since the token was issued, and puts that
// user into the request context.
func Protect(authn Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if h == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			scheme, raw, ok := strings.Cut(h, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}
			raw = strings.TrimSpace(raw)
			if raw == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			u, err := authn.Authenticate(r.Context(), raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
