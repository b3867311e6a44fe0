package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/electroworld/auth-service/internal/application/auth"
	"github.com/electroworld/auth-service/internal/config"
	"github.com/electroworld/auth-service/internal/infrastructure/memory"
	"github.com/electroworld/auth-service/internal/infrastructure/redis"
	"github.com/electroworld/auth-service/internal/transport/http/router"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:          "test",
		AppName:      "ElectroWorld",
		HTTPAddr:     ":0",
		JWTSecret:    "test-secret",
		JWTIssuer:    "test",
		JWTExpire:    time.Hour,
		BcryptCost:   4,
		ResetCodeTTL: config.ResetCodeTTL,
		UserStore:    config.StoreMemory,
		NotifyDriver: config.NotifyLog,
	}
}

type closeCounter struct{ dir, sender int }

func testDeps(cfg *config.Config, cc *closeCounter, outbox *memory.Outbox) Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewDirectory: func(context.Context, *config.Config) (Directory, func(), error) {
			return memory.NewUserRepo(), func() { cc.dir++ }, nil
		},
		NewSender: func(*config.Config) (auth.NotificationSender, func(), error) {
			return outbox, func() { cc.sender++ }, nil
		},
		NewRouter: router.New,
	}
}

func TestNewServer_ConfigLoadFails(t *testing.T) {
	t.Parallel()

	d := testDeps(testConfig(), &closeCounter{}, memory.NewOutbox())
	d.LoadConfig = func() (*config.Config, error) { return nil, errors.New("bad env") }

	if _, _, err := NewServerWithDeps(d); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewServer_DirectoryFails(t *testing.T) {
	t.Parallel()

	d := testDeps(testConfig(), &closeCounter{}, memory.NewOutbox())
	d.NewDirectory = func(context.Context, *config.Config) (Directory, func(), error) {
		return nil, nil, errors.New("db down")
	}

	if _, _, err := NewServerWithDeps(d); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewServer_SenderFails_ClosesDirectory(t *testing.T) {
	t.Parallel()

	cc := &closeCounter{}
	d := testDeps(testConfig(), cc, memory.NewOutbox())
	d.NewSender = func(*config.Config) (auth.NotificationSender, func(), error) {
		return nil, nil, errors.New("broker down")
	}

	if _, _, err := NewServerWithDeps(d); err == nil {
		t.Fatal("expected error")
	}
	if cc.dir != 1 {
		t.Fatalf("expected directory closed once, got %d", cc.dir)
	}
}

func TestNewServer_RouterFails_RunsCleanup(t *testing.T) {
	t.Parallel()

	cc := &closeCounter{}
	d := testDeps(testConfig(), cc, memory.NewOutbox())
	d.NewRouter = func(router.Deps) (http.Handler, error) { return nil, errors.New("bad routes") }

	if _, _, err := NewServerWithDeps(d); err == nil {
		t.Fatal("expected error")
	}
	if cc.dir != 1 || cc.sender != 1 {
		t.Fatalf("expected cleanup of both, got %+v", cc)
	}
}

func TestNewServer_RedisDown_StillServes(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.RedisAddr = addr
	d := testDeps(cfg, &closeCounter{}, memory.NewOutbox())
	d.NewRedis = redis.New

	srv, cleanup, err := NewServerWithDeps(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestNewServer_ServesSignupAndReset(t *testing.T) {
	t.Parallel()

	cc := &closeCounter{}
	outbox := memory.NewOutbox()
	srv, cleanup, err := NewServerWithDeps(testDeps(testConfig(), cc, outbox))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	post := func(path, body string) int {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := post("/api/v1/auth/signup", `{"name":"A","email":"a@x.com","password":"Secret123","wilaya":"Oran"}`); code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", code)
	}
	if code := post("/api/v1/auth/forgotPassword", `{"email":"a@x.com"}`); code != http.StatusOK {
		t.Fatalf("forgot: expected 200, got %d", code)
	}
	if _, ok := outbox.Last("a@x.com"); !ok {
		t.Fatalf("expected a reset notification")
	}

	cleanup()
	if cc.dir != 1 || cc.sender != 1 {
		t.Fatalf("expected cleanup of both, got %+v", cc)
	}
}

func TestNewServer_DevSeedsUsers(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Env = "dev"
	repo := memory.NewUserRepo()
	d := testDeps(cfg, &closeCounter{}, memory.NewOutbox())
	d.NewDirectory = func(context.Context, *config.Config) (Directory, func(), error) {
		return repo, func() {}, nil
	}

	_, cleanup, err := NewServerWithDeps(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if _, err := repo.GetByEmail(context.Background(), "admin@electroworld.dev"); err != nil {
		t.Fatalf("expected admin seeded: %v", err)
	}
}

func TestNewSender_LogDriver(t *testing.T) {
	t.Parallel()

	s, closeFn, err := newSender(testConfig())
	if err != nil || s == nil || closeFn == nil {
		t.Fatalf("unexpected result: %v %v", s, err)
	}
	closeFn()
}

func TestNewDirectory_Memory(t *testing.T) {
	t.Parallel()

	dir, closeFn, err := newDirectory(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if err := dir.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
