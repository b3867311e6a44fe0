package auth

import (
	"context"
	"time"

	"github.com/electroworld/auth-service/internal/domain"
)

/*
UserRepo
--------
User directory port. Only describes WHAT the auth service needs, not HOW it's stored.
Lookups that find nothing return domain.ErrUserNotFound().
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByResetCode matches the stored code hash among unexpired codes only (expires > now).
	GetByResetCode(ctx context.Context, codeHash string, now time.Time) (domain.User, error)

	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Save writes back every mutable field of u (last write wins).
	Save(ctx context.Context, u domain.User) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies session tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenSigner interface {
	Sign(userID string, issuedAt time.Time) (string, error)
	Verify(token string) (TokenClaims, error)
}

// ResetCodes produces short numeric reset codes and their stored digest.
type ResetCodes interface {
	New() (string, error)
	Hash(code string) string
}

/*
NotificationSender
------------------
Delivers a message to a user (SMTP, broker, log).
A nil error means the message was handed off.
*/
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}

// Auditor receives business events. Implementations must not block.
type Auditor interface {
	SignedUp(ctx context.Context, userID, email string)
	LoginSucceeded(ctx context.Context, userID, email string)
	LoginFailed(ctx context.Context, email, reason string)
	PasswordResetRequested(ctx context.Context, userID, email string)
	PasswordResetDeliveryFailed(ctx context.Context, userID string, err error)
	ResetCodeVerified(ctx context.Context, userID string)
	PasswordReset(ctx context.Context, userID string)
}

type nopAuditor struct{}

func (nopAuditor) SignedUp(context.Context, string, string) {}
func (nopAuditor) LoginSucceeded(context.Context, string, string) {}
func (nopAuditor) LoginFailed(context.Context, string, string) {}
func (nopAuditor) PasswordResetRequested(context.Context, string, string) {}
func (nopAuditor) PasswordResetDeliveryFailed(context.Context, string, error) {}
func (nopAuditor) ResetCodeVerified(context.Context, string) {}
func (nopAuditor) PasswordReset(context.Context, string) {}
