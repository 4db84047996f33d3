package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	MongoURI string
	DBName   string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	RedisURL        string
	CatalogCacheTTL time.Duration

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	BargainPrice       int64
	LoginRatePerMinute int
	TrustedProxies     []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("MONGODB_DB", "onestopbooks"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		RedisURL:      getEnv("REDIS_URL", ""),
		S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", "orders@onestopbooks.local"),
	}

	hours, err := getInt("SESSION_TTL_HOURS", 24*7)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour
	ttl, err := getInt("CATALOG_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.CatalogCacheTTL = time.Duration(ttl) * time.Second
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	bargain, err := getInt("BARGAIN_PRICE", 15)
	if err != nil {
		return nil, err
	}
	cfg.BargainPrice = int64(bargain)
	if cfg.LoginRatePerMinute, err = getInt("LOGIN_RATE_PER_MINUTE", 10); err != nil {
		return nil, err
	}
	cfg.TrustedProxies = getList("TRUSTED_PROXIES")
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", cfg.Production()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool { return c.AppEnv == "production" }

// InMemory reports whether the store should be the in-process one instead of MongoDB.
func (c *Config) InMemory() bool { return c.AppEnv == "memory" }

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

// RequiredEnvVars must be set when running in production.
var RequiredEnvVars = []string{
	"MONGODB_URI",
	"MONGODB_DB",
	"JWT_SECRET",
}

// OptionalEnvVars are logged at startup so you can confirm they are loaded when set.
var OptionalEnvVars = []string{
	"PORT",
	"REDIS_URL",
	"AWS_S3_BUCKET",
	"AWS_REGION",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"SMTP_HOST",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
	"BARGAIN_PRICE",
	"LOGIN_RATE_PER_MINUTE",
	"TRUSTED_PROXIES",
}

var secretEnvVars = map[string]bool{
	"JWT_SECRET":            true,
	"AWS_ACCESS_KEY_ID":     true,
	"AWS_SECRET_ACCESS_KEY": true,
	"SMTP_PASSWORD":         true,
	"REDIS_URL":             true,
	"MONGODB_URI":           true,
}

// ValidateEnv logs which variables are set. In production it returns an error
// when a required variable is missing or the JWT secret is the default.
func ValidateEnv(production bool) error {
	var missing []string
	for _, key := range RequiredEnvVars {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		} else {
			log.Debug().Str("key", key).Msg("env loaded")
		}
	}
	for _, key := range OptionalEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		switch {
		case v == "":
			log.Debug().Str("key", key).Msg("env not set (optional)")
		case secretEnvVars[key]:
			log.Debug().Str("key", key).Msg("env loaded")
		default:
			log.Debug().Str("key", key).Str("value", v).Msg("env loaded")
		}
	}
	if !production {
		if len(missing) > 0 {
			log.Warn().Strs("missing", missing).Msg("using defaults for unset env")
		}
		return nil
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	if os.Getenv("JWT_SECRET") == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set to a strong secret (not the default %s)", defaultJWTSecret)
	}
	return nil
}
