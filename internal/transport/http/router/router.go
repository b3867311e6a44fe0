package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/electroworld/auth-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Staff(w http.ResponseWriter, r *http.Request)

	// Password reset
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	VerifyResetCode(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type Middleware = func(http.Handler) http.Handler

// RateLimits holds one limiter per public route; nil entries are skipped.
type RateLimits struct {
	Signup          Middleware
	Login           Middleware
	ForgotPassword  Middleware
	VerifyResetCode Middleware
	ResetPassword   Middleware
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	ProtectMW Middleware
	StaffMW   Middleware

	RateLimits RateLimits

	// TrustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.ProtectMW == nil {
		return nil, fmt.Errorf("nil Protect middleware")
	}
	if deps.StaffMW == nil {
		return nil, fmt.Errorf("nil Staff middleware")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.AccessLog)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	rl := deps.RateLimits
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(mw(rl.Signup)...).Post("/signup", deps.Auth.Signup)
		r.With(mw(rl.Login)...).Post("/login", deps.Auth.Login)

		// --- Password reset ---
		r.With(mw(rl.ForgotPassword)...).Post("/forgotPassword", deps.Auth.ForgotPassword)
		r.With(mw(rl.VerifyResetCode)...).Post("/verifyResetCode", deps.Auth.VerifyResetCode)
		r.With(mw(rl.ResetPassword)...).Put("/resetPassword", deps.Auth.ResetPassword)

		// --- Protected ---
		r.With(deps.ProtectMW).Get("/me", deps.Auth.Me)
		r.With(deps.ProtectMW, deps.StaffMW).Get("/staff", deps.Auth.Staff)
	})

	return r, nil
}

func mw(m Middleware) []Middleware {
	if m == nil {
		return nil
	}
	return []Middleware{m}
}
