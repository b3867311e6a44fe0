package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/electroworld/auth-service/internal/domain"
)

const resetSubject = "Your password reset code (valid for 10 min)"

// rollbackTimeout bounds the reset-state rollback, which runs detached from
// the request context.
const rollbackTimeout = 5 * time.Second

// ForgotPassword issues a fresh reset code, persists its digest and sends the
// plaintext code to the user. Any previous code is replaced. If delivery
// fails the reset state is rolled back.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.lookupForReset(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.codes.New()
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	now := s.now()
	u.RequestReset(s.codes.Hash(code), now.Add(s.resetCodeTTL))
	u.UpdatedAt = now
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}

	sendErr := s.sender.Send(ctx, Notification{
		Recipient: u.Email,
		Subject:   resetSubject,
		Body:      s.resetMessage(u.Name, code),
	})
	if sendErr == nil {
		s.audit.PasswordResetRequested(ctx, u.ID, u.Email)
		return nil
	}

	s.audit.PasswordResetDeliveryFailed(ctx, u.ID, sendErr)
	u.ClearReset()
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := s.users.Save(rbCtx, u); err != nil {
		return domain.ErrDeliveryFailed(errors.Join(sendErr, fmt.Errorf("rollback: %w", err)))
	}
	return domain.ErrDeliveryFailed(sendErr)
}

// VerifyResetCode marks the owner of an unexpired matching code as verified.
func (s *Service) VerifyResetCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.ErrMissingField("resetCode")
	}

	u, err := s.users.GetByResetCode(ctx, s.codes.Hash(code), s.now())
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrResetCodeInvalid()
		}
		return err
	}

	u.MarkResetVerified()
	u.UpdatedAt = s.now()
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}

	s.audit.ResetCodeVerified(ctx, u.ID)
	return nil
}

// ResetPassword consumes a verified reset: the new hash and the cleared reset
// state are written in one Save, and a fresh token is returned.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", domain.ErrMissingField("email")
	}
	if newPassword == "" {
		return "", domain.ErrMissingField("newPassword")
	}

	u, err := s.lookupForReset(ctx, email)
	if err != nil {
		return "", err
	}
	if !u.PasswordResetVerified {
		return "", domain.ErrResetCodeNotVerified()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}

	now := s.now()
	u.ChangePassword(hash, now)
	u.ClearReset()
	u.UpdatedAt = now
	if err := s.users.Save(ctx, u); err != nil {
		return "", err
	}

	tok, err := s.issueToken(u.ID)
	if err != nil {
		return "", err
	}

	s.audit.PasswordReset(ctx, u.ID)
	return tok, nil
}

// The reset flow reports unknown emails, unlike login.
func (s *Service) lookupForReset(ctx context.Context, email string) (domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.User{}, domain.ErrNoUserWithEmail(email)
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *Service) resetMessage(name, code string) string {
	return fmt.Sprintf(
		"Hi %s,\nWe received a request to reset your %s account password.\nYour code: %s\nEnter this code to complete the reset.\n\nThanks,\nThe %s Team",
		name, s.appName, code, s.appName,
	)
}
