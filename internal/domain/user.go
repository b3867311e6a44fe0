package domain

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Wilaya       string
	PasswordHash string
	Role         Role

	// PasswordChangedAt is nil until the password is changed for the first time.
	PasswordChangedAt *time.Time

	// Reset fields: at most one outstanding code per user.
	PasswordResetCode     string // sha256 hex, never the plaintext
	PasswordResetExpires  *time.Time
	PasswordResetVerified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResetState is the position of a user in the password-reset protocol.
type ResetState string

const (
	ResetNone      ResetState = "none"
	ResetRequested ResetState = "requested"
	ResetVerified  ResetState = "verified"
)

// ResetState reports the protocol state at now. An expired, unverified code
// counts as NONE since it can never be verified.
func (u User) ResetState(now time.Time) ResetState {
	if u.PasswordResetCode == "" || u.PasswordResetExpires == nil {
		return ResetNone
	}
	if u.PasswordResetVerified {
		return ResetVerified
	}
	if !u.PasswordResetExpires.After(now) {
		return ResetNone
	}
	return ResetRequested
}

// RequestReset overwrites any prior reset state.
func (u *User) RequestReset(codeHash string, expires time.Time) {
	u.PasswordResetCode = codeHash
	u.PasswordResetExpires = &expires
	u.PasswordResetVerified = false
}

func (u *User) MarkResetVerified() {
	u.PasswordResetVerified = true
}

func (u *User) ClearReset() {
	u.PasswordResetCode = ""
	u.PasswordResetExpires = nil
	u.PasswordResetVerified = false
}

// ChangePassword replaces the hash and stamps PasswordChangedAt so that every
// token issued before at stops verifying.
func (u *User) ChangePassword(hash string, at time.Time) {
	u.PasswordHash = hash
	u.PasswordChangedAt = &at
}

// TokenIssuedBeforePasswordChange compares at second precision, the
// resolution of the token's iat claim.
func (u User) TokenIssuedBeforePasswordChange(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > iat.Unix()
}
