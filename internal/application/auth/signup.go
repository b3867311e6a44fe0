package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/electroworld/auth-service/internal/domain"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string // optional
	Wilaya   string
}

func newUserID() string { return uuid.NewString() }

// Signup creates a user with the default role and returns it with a fresh token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Wilaya = strings.TrimSpace(in.Wilaya)
	in.Phone = strings.TrimSpace(in.Phone)

	switch {
	case in.Name == "":
		return AuthResult{}, domain.ErrMissingField("name")
	case in.Email == "":
		return AuthResult{}, domain.ErrMissingField("email")
	case in.Password == "":
		return AuthResult{}, domain.ErrMissingField("password")
	case in.Wilaya == "":
		return AuthResult{}, domain.ErrMissingField("wilaya")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, domain.ErrHashFailed(err)
	}

	now := s.now()
	u := domain.User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Wilaya:       in.Wilaya,
		PasswordHash: hash,
		Role:         domain.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}

	tok, err := s.issueToken(created.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit.SignedUp(ctx, created.ID, created.Email)
	return AuthResult{User: created, Token: tok}, nil
}
