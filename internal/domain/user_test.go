package domain

import (
	"testing"
	"time"
)

func TestUserStruct_DefaultZeroValues(t *testing.T) {
	var u User

	if u.Role != "" {
		t.Fatalf("expected empty role")
	}
	if u.PasswordChangedAt != nil {
		t.Fatalf("expected nil PasswordChangedAt")
	}
	if u.ResetState(time.Now()) != ResetNone {
		t.Fatalf("expected no reset in progress")
	}
}

func TestUser_ResetLifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var u User

	u.RequestReset("h1", now.Add(10*time.Minute))
	if got := u.ResetState(now); got != ResetRequested {
		t.Fatalf("expected requested, got %s", got)
	}

	u.MarkResetVerified()
	if got := u.ResetState(now); got != ResetVerified {
		t.Fatalf("expected verified, got %s", got)
	}

	u.RequestReset("h2", now.Add(10*time.Minute))
	if u.PasswordResetVerified {
		t.Fatalf("new request must reset verified flag")
	}
	if u.PasswordResetCode != "h2" {
		t.Fatalf("new request must overwrite code")
	}

	u.ClearReset()
	if u.PasswordResetCode != "" || u.PasswordResetExpires != nil || u.PasswordResetVerified {
		t.Fatalf("expected reset fields cleared, got %+v", u)
	}
}

func TestUser_ResetState_ExpiredIsNone(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var u User
	u.RequestReset("h", now.Add(-time.Second))

	if got := u.ResetState(now); got != ResetNone {
		t.Fatalf("expected none for expired code, got %s", got)
	}
}

func TestUser_TokenIssuedBeforePasswordChange(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var u User

	if u.TokenIssuedBeforePasswordChange(t0) {
		t.Fatalf("never-changed password must not invalidate tokens")
	}

	u.ChangePassword("new", t0.Add(500*time.Millisecond))
	if u.TokenIssuedBeforePasswordChange(t0) {
		t.Fatalf("same-second change must not invalidate (iat has second precision)")
	}

	u.ChangePassword("newer", t0.Add(2*time.Second))
	if !u.TokenIssuedBeforePasswordChange(t0) {
		t.Fatalf("later change must invalidate older token")
	}
	if u.PasswordHash != "newer" {
		t.Fatalf("expected hash replaced")
	}
}
