package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/electroworld/auth-service/internal/application/auth"
	"github.com/electroworld/auth-service/internal/audit"
	"github.com/electroworld/auth-service/internal/config"
	"github.com/electroworld/auth-service/internal/domain"
	mongorepo "github.com/electroworld/auth-service/internal/infrastructure/db/mongo"
	"github.com/electroworld/auth-service/internal/infrastructure/db/postgres"
	"github.com/electroworld/auth-service/internal/infrastructure/memory"
	"github.com/electroworld/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/electroworld/auth-service/internal/infrastructure/notify"
	"github.com/electroworld/auth-service/internal/infrastructure/redis"
	"github.com/electroworld/auth-service/internal/infrastructure/security"
	"github.com/electroworld/auth-service/internal/logger"
	http_handlers "github.com/electroworld/auth-service/internal/transport/http/handlers"
	"github.com/electroworld/auth-service/internal/transport/http/middleware"
	"github.com/electroworld/auth-service/internal/transport/http/response"
	"github.com/electroworld/auth-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

// Directory is the user store plus a readiness probe.
type Directory interface {
	auth.UserRepo
	Ping(ctx context.Context) error
}

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDirectory func(ctx context.Context, cfg *config.Config) (Directory, func(), error)

	// NewRedis may be nil; rate limits then stay in-process.
	NewRedis func(addr, password string, db int) *redis.Client

	NewSender func(cfg *config.Config) (auth.NotificationSender, func(), error)

	NewRouter func(router.Deps) (http.Handler, error)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// 1) user directory
	users, closeDir, err := deps.NewDirectory(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("user directory (%s): %w", cfg.UserStore, err)
	}
	cleanupFns := []func(){closeDir}
	logger.Logger.Info().Str("store", cfg.UserStore).Msg("user directory ready")

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; rate limits are per instance")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) notifications
	sender, closeSender, err := deps.NewSender(cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, fmt.Errorf("notification sender (%s): %w", cfg.NotifyDriver, err)
	}
	cleanupFns = append(cleanupFns, closeSender)

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpire)

	// seed (dev only)
	if cfg.Env == "dev" {
		SeedUsers(ctx, users, hasher)
	}

	// 5) service
	auditLog := audit.New(logger.Logger)
	authSvc := auth.NewService(
		users,
		hasher,
		signer,
		security.NewResetCodes(),
		sender,
		auth.Config{
			ResetCodeTTL: cfg.ResetCodeTTL,
			AppName:      cfg.AppName,
		},
	).WithAudit(auditLog)

	// 6) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc)
	healthH := http_handlers.NewHealthHandler(users)

	protectMW := middleware.Protect(authSvc, response.WriteError)
	staffMW := middleware.AllowedTo(domain.NewRoleSet(domain.RoleAdmin, domain.RoleManager), auditLog, response.WriteError)

	// rate limit (fail-open)
	limiter := redis.NewFixedWindowLimiter(redisCli)
	rl := func(key string, limit int, window time.Duration) func(http.Handler) http.Handler {
		return middleware.RateLimit(
			limiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   window,
			},
			response.WriteError,
		)
	}

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:     healthH,
		Auth:       authH,
		ProtectMW:  protectMW,
		StaffMW:    staffMW,
		TrustProxy: cfg.TrustProxy,
		RateLimits: router.RateLimits{
			Signup:          rl("auth.signup", 5, time.Minute),
			Login:           rl("auth.login", 10, time.Minute),
			ForgotPassword:  rl("auth.forgot_password", 3, 10*time.Minute),
			VerifyResetCode: rl("auth.verify_reset_code", 5, 10*time.Minute),
			ResetPassword:   rl("auth.reset_password", 5, 10*time.Minute),
		},
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig:   config.Load,
		NewDirectory: newDirectory,
		NewRedis:     redis.New,
		NewSender:    newSender,
		NewRouter:    router.New,
	}
}

func newDirectory(ctx context.Context, cfg *config.Config) (Directory, func(), error) {
	switch cfg.UserStore {
	case config.StorePostgres:
		db, err := config.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewUserRepo(db), func() { _ = db.Close() }, nil

	case config.StoreMongo:
		cli, err := mongorepo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = cli.Disconnect(dctx)
		}
		repo := mongorepo.NewUserRepo(cli.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return repo, disconnect, nil

	default:
		logger.Logger.Warn().Msg("using in-memory user directory; data is lost on restart")
		return memory.NewUserRepo(), func() {}, nil
	}
}

func newSender(cfg *config.Config) (auth.NotificationSender, func(), error) {
	switch cfg.NotifyDriver {
	case config.NotifySMTP:
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
			Insecure: cfg.SMTP.Insecure,
		}, logger.Logger), func() {}, nil

	case config.NotifyRabbitMQ:
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; reset codes go to the log sender")
				return notify.NewLogSender(logger.Logger), func() {}, nil
			}
			return nil, nil, err
		}
		return pub, func() { _ = pub.Close() }, nil

	default:
		return notify.NewLogSender(logger.Logger), func() {}, nil
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
