package auth

import (
	"strings"
	"time"

	"github.com/electroworld/auth-service/internal/domain"
)

const defaultResetCodeTTL = 10 * time.Minute

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	signer TokenSigner
	codes  ResetCodes
	sender NotificationSender
	audit  Auditor

	resetCodeTTL time.Duration
	appName      string
	now          func() time.Time
	newID        func() string
}

type Config struct {
	ResetCodeTTL time.Duration
	AppName      string // used in the reset email text
	Now          func() time.Time
	NewID        func() string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	codes ResetCodes,
	sender NotificationSender,
	cfg Config,
) *Service {
	ttl := cfg.ResetCodeTTL
	if ttl <= 0 {
		ttl = defaultResetCodeTTL
	}
	app := cfg.AppName
	if app == "" {
		app = "ElectroWorld"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = newUserID
	}
	return &Service{
		users:  users,
		hasher: hasher,
		signer: signer,
		codes:  codes,
		sender: sender,
		audit:  nopAuditor{},

		resetCodeTTL: ttl,
		appName:      app,
		now:          now,
		newID:        newID,
	}
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

// AuthResult is the common output of signup and login.
type AuthResult struct {
	User  domain.User
	Token string
}

func (s *Service) issueToken(userID string) (string, error) {
	tok, err := s.signer.Sign(userID, s.now())
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return tok, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
