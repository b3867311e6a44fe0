package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/electroworld/auth-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	getByEmailErr error
	createErr     error
	saveErr       error
	saveErrAfter  int // fail from the n-th Save on (1-based); 0 = use saveErr always

	// honorCtx makes Save fail on a done context, like the real drivers.
	honorCtx bool

	saves []domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByResetCode(ctx context.Context, codeHash string, now time.Time) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.PasswordResetCode == codeHash && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Save(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.honorCtx {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	f.saves = append(f.saves, u)
	if f.saveErr != nil && (f.saveErrAfter == 0 || len(f.saves) >= f.saveErrAfter) {
		return f.saveErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound()
	}
	f.byID[u.ID] = u
	return nil
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeSigner encodes uid and iat in clear text; exp is iat+ttl against clock.
type fakeSigner struct {
	clock  *fakeClock
	ttl    time.Duration
	signFn func(userID string, iat time.Time) (string, error)
}

func (s *fakeSigner) Sign(userID string, issuedAt time.Time) (string, error) {
	if s.signFn != nil {
		return s.signFn(userID, issuedAt)
	}
	return fmt.Sprintf("tok|%s|%d", userID, issuedAt.Unix()), nil
}

func (s *fakeSigner) Verify(token string) (TokenClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 || parts[0] != "tok" {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	sec, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	iat := time.Unix(sec, 0)
	exp := iat.Add(s.ttl)
	if s.clock != nil && !s.clock.Now().Before(exp) {
		return TokenClaims{}, domain.ErrTokenExpired()
	}
	return TokenClaims{UserID: parts[1], IssuedAt: iat, ExpiresAt: exp}, nil
}

// fakeCodes hands out codes from a queue so tests know the plaintext.
type fakeCodes struct {
	mu    sync.Mutex
	queue []string
	err   error
}

func (c *fakeCodes) New() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return "", c.err
	}
	if len(c.queue) == 0 {
		return "000000", nil
	}
	code := c.queue[0]
	c.queue = c.queue[1:]
	return code, nil
}

func (c *fakeCodes) Hash(code string) string { return "sha:" + code }

type fakeSender struct {
	mu   sync.Mutex
	sent []Notification
	err  error

	// onSend runs before the send outcome is decided.
	onSend func(ctx context.Context) error
}

func (s *fakeSender) Send(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.onSend != nil {
		if err := s.onSend(ctx); err != nil {
			return err
		}
	}
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type auditEntry struct {
	action string
	fields []string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) add(action string, fields ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, fields: fields})
}

func (a *fakeAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

func (a *fakeAuditor) SignedUp(_ context.Context, userID, email string) {
	a.add("signed_up", userID, email)
}
func (a *fakeAuditor) LoginSucceeded(_ context.Context, userID, email string) {
	a.add("login_success", userID, email)
}
func (a *fakeAuditor) LoginFailed(_ context.Context, email, reason string) {
	a.add("login_failed", email, reason)
}
func (a *fakeAuditor) PasswordResetRequested(_ context.Context, userID, email string) {
	a.add("reset_requested", userID, email)
}
func (a *fakeAuditor) PasswordResetDeliveryFailed(_ context.Context, userID string, err error) {
	a.add("reset_delivery_failed", userID, err.Error())
}
func (a *fakeAuditor) ResetCodeVerified(_ context.Context, userID string) {
	a.add("reset_verified", userID)
}
func (a *fakeAuditor) PasswordReset(_ context.Context, userID string) {
	a.add("password_reset", userID)
}

/*
Test wiring
*/

type testEnv struct {
	svc    *Service
	users  *fakeUserRepo
	hasher *fakeHasher
	signer *fakeSigner
	codes  *fakeCodes
	sender *fakeSender
	clock  *fakeClock
	audit  *fakeAuditor
}

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newSvcForTest(t *testing.T) testEnv {
	t.Helper()

	clock := &fakeClock{t: t0}
	env := testEnv{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		signer: &fakeSigner{clock: clock, ttl: 24 * time.Hour},
		codes:  &fakeCodes{},
		sender: &fakeSender{},
		clock:  clock,
		audit:  &fakeAuditor{},
	}

	var n int
	env.svc = NewService(env.users, env.hasher, env.signer, env.codes, env.sender, Config{
		ResetCodeTTL: 10 * time.Minute,
		AppName:      "ElectroWorld",
		Now:          clock.Now,
		NewID: func() string {
			n++
			return fmt.Sprintf("u%d", n)
		},
	}).WithAudit(env.audit)
	return env
}

// seedUser stores a user whose password is pw under the fake hasher.
func (e testEnv) seedUser(id, email, pw string, role domain.Role) domain.User {
	u := domain.User{
		ID:           id,
		Name:         "Amine",
		Email:        email,
		Wilaya:       "Oran",
		PasswordHash: "hash:" + pw,
		Role:         role,
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	e.users.put(u)
	return u
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}
