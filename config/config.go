package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env         string
	HTTPAddr    string
	DatabaseURL string
	// BaseURL is the public origin used in emailed links.
	BaseURL string

	JWTSecret          string
	JWTIssuer          string
	JWTExpiresIn       time.Duration
	JWTCookieExpiresIn time.Duration
	CookieDomain       string

	BcryptCost  int
	HashWorkers int

	ResendAPIKey string
	MailFrom     string

	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var errs []error

	jwtExpiresIn, err := durationEnv("JWT_EXPIRES_IN", 90*24*time.Hour)
	errs = append(errs, err)
	cookieDays, err := intEnv("JWT_COOKIE_EXPIRES_IN", 90)
	errs = append(errs, err)
	bcryptCost, err := intEnv("BCRYPT_COST", 12)
	errs = append(errs, err)
	hashWorkers, err := intEnv("HASH_WORKERS", 0)
	errs = append(errs, err)
	rateLimitMax, err := intEnv("RATE_LIMIT_MAX", 100)
	errs = append(errs, err)
	rateLimitWindow, err := durationEnv("RATE_LIMIT_WINDOW", time.Hour)
	errs = append(errs, err)

	cfg := &Config{
		Env:                getEnv("APP_ENV", EnvDevelopment),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		BaseURL:            strings.TrimRight(getEnv("APP_BASE_URL", ""), "/"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          os.Getenv("JWT_ISSUER"),
		JWTExpiresIn:       jwtExpiresIn,
		JWTCookieExpiresIn: time.Duration(cookieDays) * 24 * time.Hour,
		CookieDomain:       os.Getenv("COOKIE_DOMAIN"),
		BcryptCost:         bcryptCost,
		HashWorkers:        hashWorkers,
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		MailFrom:           os.Getenv("MAIL_FROM"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RateLimitMax:       rateLimitMax,
		RateLimitWindow:    rateLimitWindow,
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, errors.New("APP_BASE_URL must be an absolute http(s) URL"))
		}
	} else if cfg.Env == EnvProduction {
		errs = append(errs, errors.New("APP_BASE_URL is required in production"))
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q", EnvDevelopment, EnvProduction))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// durationEnv accepts Go durations ("24h") and a bare day count ("90d").
func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
