package auth

import (
	"context"
	"strings"

	"github.com/electroworld/auth-service/internal/domain"
)

// Authenticate resolves a raw session token to its user. The token must
// verify, its user must still exist, and it must not predate the user's
// last password change.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (domain.User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.User{}, domain.ErrTokenMissing()
	}

	claims, err := s.signer.Verify(rawToken)
	if err != nil {
		return domain.User{}, err
	}
	if claims.UserID == "" {
		return domain.User{}, domain.ErrTokenInvalid()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.User{}, domain.ErrUserNoLongerExists()
		}
		return domain.User{}, err
	}

	if u.TokenIssuedBeforePasswordChange(claims.IssuedAt) {
		return domain.User{}, domain.ErrPasswordChanged()
	}
	return u, nil
}
