package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/electroworld/auth-service/internal/domain"
)

// UserRepo is the in-process user directory used for local development and tests.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepo) WithClock(now func() time.Time) *UserRepo {
	if now != nil {
		r.now = now
	}
	return r
}

func normEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normEmail(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) GetByResetCode(ctx context.Context, codeHash string, now time.Time) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if codeHash == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	for _, u := range r.byID {
		if u.PasswordResetCode == codeHash && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = normEmail(u.Email)
	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if u.ID == "" {
		return domain.User{}, domain.ErrInternal(nil)
	}
	if u.Role == "" {
		u.Role = domain.DefaultRole
	}
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

// Save replaces the stored record. A hash change that did not advance
// PasswordChangedAt is stamped here.
func (r *UserRepo) Save(ctx context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byID[u.ID]
	if !ok {
		return domain.ErrUserNotFound()
	}

	u.Email = normEmail(u.Email)
	if u.Email != prev.Email {
		if other, taken := r.byEmail[u.Email]; taken && other != u.ID {
			return domain.ErrEmailAlreadyExists()
		}
		delete(r.byEmail, prev.Email)
		r.byEmail[u.Email] = u.ID
	}

	now := r.now()
	if u.PasswordHash != prev.PasswordHash && samePointerTime(u.PasswordChangedAt, prev.PasswordChangedAt) {
		u.PasswordChangedAt = &now
	}
	if u.UpdatedAt.IsZero() || !u.UpdatedAt.After(prev.UpdatedAt) {
		u.UpdatedAt = now
	}

	r.byID[u.ID] = u
	return nil
}

// Delete removes a user; unknown ids are ignored.
func (r *UserRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
}

func (r *UserRepo) Ping(ctx context.Context) error { return nil }

func samePointerTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
