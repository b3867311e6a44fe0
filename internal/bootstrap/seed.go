package bootstrap

import (
	"context"

	"github.com/google/uuid"

	"github.com/electroworld/auth-service/internal/domain"
	"github.com/electroworld/auth-service/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// SeedUsers creates one account per role for local development.
// Existing accounts are left alone, so it is restart safe.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher) {
	seeds := []struct {
		Name  string
		Email string
		Role  domain.Role
		Pass  string
	}{
		{Name: "Admin", Email: "admin@electroworld.dev", Role: domain.RoleAdmin, Pass: "AdminPassword123!"},
		{Name: "Manager", Email: "manager@electroworld.dev", Role: domain.RoleManager, Pass: "ManagerPassword123!"},
		{Name: "User", Email: "user@electroworld.dev", Role: domain.RoleUser, Pass: "UserPassword123!"},
	}

	created := 0
	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("email", s.Email).Msg("seed: hash failed")
			continue
		}

		_, err = repo.Create(ctx, domain.User{
			ID:           uuid.NewString(),
			Name:         s.Name,
			Email:        s.Email,
			Wilaya:       "Alger",
			PasswordHash: hash,
			Role:         s.Role,
		})
		if err != nil {
			if !domain.Is(err, "email_already_exists") {
				logger.Logger.Warn().Err(err).Str("email", s.Email).Msg("seed: create failed")
			}
			continue
		}
		created++
	}

	logger.Logger.Info().Int("created", created).Msg("seed: dev users ready")
}
