package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/electroworld/auth-service/internal/domain"
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func (r *UserRepo) getOne(ctx context.Context, q string, args ...any) (domain.User, error) {
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur)
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;`
	return r.getOne(ctx, q, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;`
	return r.getOne(ctx, q, id)
}

func (r *UserRepo) GetByResetCode(ctx context.Context, codeHash string, now time.Time) (domain.User, error) {
	if codeHash == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}

	const q = `SELECT ` + userColumns + `
FROM users
WHERE password_reset_code = $1
  AND password_reset_expires > $2
LIMIT 1;`
	return r.getOne(ctx, q, codeHash, now)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = domain.DefaultRole
	}

	const q = `
INSERT INTO users (id, name, email, phone, wilaya, password_hash, role)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + userColumns + `;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		u.ID, u.Name, u.Email, u.Phone, u.Wilaya, u.PasswordHash, string(u.Role),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur)
}

// Save writes every mutable column. password_changed_at falls back to NOW()
// when the hash differs from the stored one and the caller did not move the
// timestamp; the CASE reads the pre-update row.
func (r *UserRepo) Save(ctx context.Context, u domain.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return domain.ErrMissingField("id")
	}
	if !u.Role.Valid() {
		return domain.ErrInvalidRole(string(u.Role))
	}

	const q = `
UPDATE users
SET name = $2,
    email = $3,
    phone = $4,
    wilaya = $5,
    role = $6,
    password_changed_at = CASE
        WHEN password_hash <> $7 AND password_changed_at IS NOT DISTINCT FROM $8::timestamptz THEN NOW()
        ELSE $8::timestamptz
    END,
    password_hash = $7,
    password_reset_code = $9,
    password_reset_expires = $10,
    password_reset_verified = $11,
    updated_at = NOW()
WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Name,
		normalizeEmail(u.Email),
		u.Phone,
		u.Wilaya,
		string(u.Role),
		u.PasswordHash,
		nullTime(u.PasswordChangedAt),
		nullString(u.PasswordResetCode),
		nullTime(u.PasswordResetExpires),
		u.PasswordResetVerified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists()
		}
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
