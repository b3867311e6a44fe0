package http_handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/electroworld/auth-service/internal/application/auth"
	"github.com/electroworld/auth-service/internal/domain"
	"github.com/electroworld/auth-service/internal/infrastructure/memory"
	"github.com/electroworld/auth-service/internal/infrastructure/security"
	"github.com/electroworld/auth-service/internal/transport/http/middleware"
	"github.com/electroworld/auth-service/internal/transport/http/response"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	h      http.Handler
	users  *memory.UserRepo
	outbox *memory.Outbox
	clock  *testClock
}

// newTestServer wires the real service over the in-memory directory and
// outbox, mounted on chi the same way the router does.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	users := memory.NewUserRepo().WithClock(clock.Now)
	outbox := memory.NewOutbox()
	signer := security.NewJWTSigner("test-secret", "electroworld-test", 24*time.Hour).WithClock(clock.Now)

	svc := auth.NewService(
		users,
		security.NewBcryptHasher(4),
		signer,
		security.NewResetCodes(),
		outbox,
		auth.Config{Now: clock.Now},
	)
	ah := NewAuthHandler(svc)

	protect := middleware.Protect(svc, response.WriteError)
	staff := middleware.AllowedTo(domain.NewRoleSet(domain.RoleAdmin, domain.RoleManager), nil, response.WriteError)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", ah.Signup)
		r.Post("/login", ah.Login)
		r.Post("/forgotPassword", ah.ForgotPassword)
		r.Post("/verifyResetCode", ah.VerifyResetCode)
		r.Put("/resetPassword", ah.ResetPassword)
		r.With(protect).Get("/me", ah.Me)
		r.With(protect, staff).Get("/staff", ah.Staff)
	})

	return &testServer{h: r, users: users, outbox: outbox, clock: clock}
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		rd = mustJSONBody(t, body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	return rr
}

func mustReadJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode json failed: %v; body=%s", err, rr.Body.String())
	}
}

type errorBody struct {
	Error struct {
		Code       string            `json:"code"`
		Message    string            `json:"message"`
		StatusCode int               `json:"status_code"`
		Meta       map[string]string `json:"meta"`
		RequestID  string            `json:"request_id"`
	} `json:"error"`
}

func requireError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d; body=%s", status, rr.Code, rr.Body.String())
	}
	var eb errorBody
	mustReadJSON(t, rr, &eb)
	if eb.Error.Code != code {
		t.Fatalf("expected code %q, got %q", code, eb.Error.Code)
	}
	if eb.Error.StatusCode != status {
		t.Fatalf("expected status_code %d, got %d", status, eb.Error.StatusCode)
	}
	return eb
}

type authBody struct {
	Data struct {
		ID     string `json:"_id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Wilaya string `json:"wilaya"`
		Role   string `json:"role"`
	} `json:"data"`
	Token string `json:"token"`
}

var codeRe = regexp.MustCompile(`Your code: (\d{6})`)

func (s *testServer) lastCode(t *testing.T, email string) string {
	t.Helper()
	n, ok := s.outbox.Last(email)
	if !ok {
		t.Fatalf("no notification for %s", email)
	}
	m := codeRe.FindStringSubmatch(n.Body)
	if m == nil {
		t.Fatalf("no code in body %q", n.Body)
	}
	return m[1]
}

func (s *testServer) signup(t *testing.T, email, password string) authBody {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"name": "Amina", "email": email, "password": password, "phone": "0555000000", "wilaya": "Oran",
	}, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var ab authBody
	mustReadJSON(t, rr, &ab)
	return ab
}
