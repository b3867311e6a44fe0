package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"

	NotifySMTP     = "smtp"
	NotifyRabbitMQ = "rabbitmq"
	NotifyLog      = "log"
)

// ResetCodeTTL is the lifetime of a password-reset code. The reset email
// promises 10 minutes, so it is not configurable.
const ResetCodeTTL = 10 * time.Minute

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool // plain connection, for local relays such as MailHog
}

type Config struct {
	//App
	Env     string // dev / staging / prod
	AppName string
	//HTTP
	HTTPAddr   string
	TrustProxy bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	//Auth / Security
	JWTSecret    string
	JWTIssuer    string
	JWTExpire    time.Duration
	BcryptCost   int
	ResetCodeTTL time.Duration

	// User directory
	UserStore string
	DBAddr    string
	DBDebug   bool
	MongoURI  string
	MongoDB   string

	// Rate limiting (best-effort; falls back to in-process when empty/unreachable)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Notifications
	NotifyDriver   string
	SMTP           SMTPConfig
	RabbitURL      string
	RabbitExchange string
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Env:          getEnv("ENV", "dev"),
		AppName:      getEnv("APP_NAME", "ElectroWorld"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8000"),
		JWTIssuer:    getEnv("JWT_ISSUER", "electroworld-auth"),
		ResetCodeTTL: ResetCodeTTL,
		UserStore:    strings.ToLower(getEnv("USER_STORE", StorePostgres)),
		MongoDB:      getEnv("MONGO_DB", "electroworld"),

		RabbitExchange: getEnv("RABBIT_EXCHANGE", "electroworld.notifications"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	var err error
	if cfg.JWTExpire, err = getDuration("JWT_EXPIRE_TIME", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWTExpire <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE_TIME must be positive")
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}
	if cfg.TrustProxy, err = getBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}

	// user directory
	switch cfg.UserStore {
	case StorePostgres:
		cfg.DBAddr = os.Getenv("DB_ADDR")
		if cfg.DBAddr == "" {
			return nil, fmt.Errorf("missing required env var: DB_ADDR")
		}
		if !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
			return nil, fmt.Errorf("DB_ADDR must be a postgres:// URL")
		}
		if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
			return nil, err
		}
	case StoreMongo:
		cfg.MongoURI = os.Getenv("MONGO_URI")
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("missing required env var: MONGO_URI")
		}
	case StoreMemory:
		if cfg.Env == "prod" {
			return nil, fmt.Errorf("USER_STORE=memory is not allowed in prod")
		}
	default:
		return nil, fmt.Errorf("invalid USER_STORE %q (want postgres, mongo or memory)", cfg.UserStore)
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// notifications
	defDriver := NotifySMTP
	if cfg.Env == "dev" {
		defDriver = NotifyLog
	}
	cfg.NotifyDriver = strings.ToLower(getEnv("NOTIFY_DRIVER", defDriver))
	switch cfg.NotifyDriver {
	case NotifySMTP:
		cfg.SMTP = SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		}
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("missing required env var: SMTP_HOST")
		}
		if cfg.SMTP.From == "" {
			return nil, fmt.Errorf("missing required env var: SMTP_FROM")
		}
		if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
			return nil, err
		}
		if cfg.SMTP.Insecure, err = getBool("SMTP_INSECURE", false); err != nil {
			return nil, err
		}
		if cfg.SMTP.Timeout, err = getDuration("SMTP_TIMEOUT", 10*time.Second); err != nil {
			return nil, err
		}
	case NotifyRabbitMQ:
		cfg.RabbitURL = os.Getenv("RABBIT_URL")
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env var: RABBIT_URL")
		}
	case NotifyLog:
		if cfg.Env == "prod" {
			return nil, fmt.Errorf("NOTIFY_DRIVER=log is not allowed in prod")
		}
	default:
		return nil, fmt.Errorf("invalid NOTIFY_DRIVER %q (want smtp, rabbitmq or log)", cfg.NotifyDriver)
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}
