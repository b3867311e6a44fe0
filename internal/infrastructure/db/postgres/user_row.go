package postgres

import (
	"database/sql"
	"time"

	"github.com/electroworld/auth-service/internal/domain"
)

const userColumns = `id, name, email, phone, wilaya, password_hash, role,
password_changed_at, password_reset_code, password_reset_expires, password_reset_verified,
created_at, updated_at`

type userRow struct {
	ID                    string
	Name                  string
	Email                 string
	Phone                 string
	Wilaya                string
	PasswordHash          string
	Role                  string
	PasswordChangedAt     sql.NullTime
	PasswordResetCode     sql.NullString
	PasswordResetExpires  sql.NullTime
	PasswordResetVerified bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Name,
		&ur.Email,
		&ur.Phone,
		&ur.Wilaya,
		&ur.PasswordHash,
		&ur.Role,
		&ur.PasswordChangedAt,
		&ur.PasswordResetCode,
		&ur.PasswordResetExpires,
		&ur.PasswordResetVerified,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) (domain.User, error) {
	role, err := domain.ParseRole(ur.Role)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:                    ur.ID,
		Name:                  ur.Name,
		Email:                 ur.Email,
		Phone:                 ur.Phone,
		Wilaya:                ur.Wilaya,
		PasswordHash:          ur.PasswordHash,
		Role:                  role,
		PasswordResetCode:     ur.PasswordResetCode.String,
		PasswordResetVerified: ur.PasswordResetVerified,
		CreatedAt:             ur.CreatedAt,
		UpdatedAt:             ur.UpdatedAt,
	}
	if ur.PasswordChangedAt.Valid {
		t := ur.PasswordChangedAt.Time
		u.PasswordChangedAt = &t
	}
	if ur.PasswordResetExpires.Valid {
		t := ur.PasswordResetExpires.Time
		u.PasswordResetExpires = &t
	}
	return u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
