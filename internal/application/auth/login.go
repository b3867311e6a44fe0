package auth

import (
	"context"

	"github.com/electroworld/auth-service/internal/domain"
)

// Login authenticates a user and issues a token.
// IMPORTANT: an unknown email and a wrong password must be indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)

	if email == "" || password == "" {
		s.audit.LoginFailed(ctx, email, "empty_credentials")
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !domain.Is(err, "user_not_found") {
			return AuthResult{}, err
		}
		s.audit.LoginFailed(ctx, email, "unknown_email")
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.audit.LoginFailed(ctx, email, "bad_password")
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	tok, err := s.issueToken(u.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit.LoginSucceeded(ctx, u.ID, u.Email)
	return AuthResult{User: u, Token: tok}, nil
}
