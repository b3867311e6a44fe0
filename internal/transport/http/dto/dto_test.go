package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/electroworld/auth-service/internal/domain"
)

func requireMeta(t *testing.T, err error, code, field string) {
	t.Helper()
	de, ok := err.(*domain.Error)
	if !ok {
		t.Fatalf("expected *domain.Error, got %T (%v)", err, err)
	}
	if de.Code != code {
		t.Fatalf("expected code %q, got %q", code, de.Code)
	}
	if de.Meta["field"] != field {
		t.Fatalf("expected field %q, got %q", field, de.Meta["field"])
	}
}

func TestSignupRequest_Validate(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		r := &SignupRequest{Email: "a@x.com", Password: "Secret123", Wilaya: "Oran"}
		requireMeta(t, r.Validate(), "missing_field", "name")
	})

	t.Run("missing wilaya", func(t *testing.T) {
		r := &SignupRequest{Name: "A", Email: "a@x.com", Password: "Secret123"}
		requireMeta(t, r.Validate(), "missing_field", "wilaya")
	})

	t.Run("whitespace-only name counts as missing", func(t *testing.T) {
		r := &SignupRequest{Name: "   ", Email: "a@x.com", Password: "Secret123", Wilaya: "Oran"}
		requireMeta(t, r.Validate(), "missing_field", "name")
	})

	t.Run("invalid email", func(t *testing.T) {
		r := &SignupRequest{Name: "A", Email: "not-an-email", Password: "Secret123", Wilaya: "Oran"}
		err := r.Validate()
		requireMeta(t, err, "invalid_field", "email")
		if reason := err.(*domain.Error).Meta["reason"]; !strings.Contains(reason, "valid email") {
			t.Fatalf("expected translated reason, got %q", reason)
		}
	})

	t.Run("ok and normalized", func(t *testing.T) {
		r := &SignupRequest{Name: " A ", Email: " A@X.com ", Password: "Secret123", Wilaya: "Oran"}
		if err := r.Validate(); err != nil {
			t.Fatalf("expected nil, got: %v", err)
		}
		if r.Email != "a@x.com" || r.Name != "A" {
			t.Fatalf("expected normalization, got %+v", r)
		}
	})
}

func TestLoginRequest_Validate(t *testing.T) {
	t.Run("missing password", func(t *testing.T) {
		r := &LoginRequest{Email: "a@x.com"}
		requireMeta(t, r.Validate(), "missing_field", "password")
	})

	t.Run("ok", func(t *testing.T) {
		r := &LoginRequest{Email: "a@x.com", Password: "x"}
		if err := r.Validate(); err != nil {
			t.Fatalf("expected nil, got: %v", err)
		}
	})
}

func TestResetRequests_Validate(t *testing.T) {
	t.Run("forgot missing email", func(t *testing.T) {
		requireMeta(t, (&ForgotPasswordRequest{}).Validate(), "missing_field", "email")
	})

	t.Run("verify missing code", func(t *testing.T) {
		requireMeta(t, (&VerifyResetCodeRequest{ResetCode: "  "}).Validate(), "missing_field", "resetCode")
	})

	t.Run("reset missing new password", func(t *testing.T) {
		requireMeta(t, (&ResetPasswordRequest{Email: "a@x.com"}).Validate(), "missing_field", "newPassword")
	})
}

func TestUserView_HidesSecrets(t *testing.T) {
	u := domain.User{
		ID: "u1", Name: "A", Email: "a@x.com", Wilaya: "Oran", Role: domain.RoleUser,
		PasswordHash: "$2a$10$secret", PasswordResetCode: "deadbeef",
	}
	b, err := json.Marshal(NewUserView(u))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "secret") || strings.Contains(s, "deadbeef") {
		t.Fatalf("view leaked secrets: %s", s)
	}
	if !strings.Contains(s, `"_id":"u1"`) || !strings.Contains(s, `"role":"user"`) {
		t.Fatalf("unexpected view: %s", s)
	}
}
