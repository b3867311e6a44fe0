package audit

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	pkgctx "github.com/electroworld/auth-service/internal/pkg/context"
)

var eventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Auth business events by action",
	},
	[]string{"action"},
)

// Logger provides structured audit logging for auth business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

func (l *Logger) event(ctx context.Context, e *zerolog.Event, action string) *zerolog.Event {
	eventsTotal.WithLabelValues(action).Inc()
	return e.Str("action", action).Str("request_id", pkgctx.GetRequestID(ctx))
}

// SignedUp logs a new account
func (l *Logger) SignedUp(ctx context.Context, userID, email string) {
	l.event(ctx, l.log.Info(), "signup").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Msg("User signed up")
}

// LoginSucceeded logs a successful login
func (l *Logger) LoginSucceeded(ctx context.Context, userID, email string) {
	l.event(ctx, l.log.Info(), "login_success").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Msg("User logged in successfully")
}

// LoginFailed logs a failed login attempt
func (l *Logger) LoginFailed(ctx context.Context, email, reason string) {
	l.event(ctx, l.log.Warn(), "login_failed").
		Str("email", maskEmail(email)).
		Str("reason", reason).
		Msg("Login attempt failed")
}

func (l *Logger) PasswordResetRequested(ctx context.Context, userID, email string) {
	l.event(ctx, l.log.Info(), "password_reset_requested").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Msg("Password reset requested")
}

func (l *Logger) PasswordResetDeliveryFailed(ctx context.Context, userID string, err error) {
	l.event(ctx, l.log.Error(), "password_reset_delivery_failed").
		Str("user_id", userID).
		Err(err).
		Msg("Password reset code could not be delivered")
}

func (l *Logger) ResetCodeVerified(ctx context.Context, userID string) {
	l.event(ctx, l.log.Info(), "reset_code_verified").
		Str("user_id", userID).
		Msg("Reset code verified")
}

// PasswordReset logs the final step of the reset flow
func (l *Logger) PasswordReset(ctx context.Context, userID string) {
	l.event(ctx, l.log.Info(), "password_reset").
		Str("user_id", userID).
		Msg("User password reset")
}

// AccessDenied logs a role check that failed on a protected route
func (l *Logger) AccessDenied(ctx context.Context, userID, role, route string) {
	l.event(ctx, l.log.Warn(), "access_denied").
		Str("user_id", userID).
		Str("role", role).
		Str("route", route).
		Msg("Access denied")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
