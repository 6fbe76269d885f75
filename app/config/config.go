package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ErrMissingSecret is returned by RequireSecret when SECRET_KEY is unset.
var ErrMissingSecret = errors.New("SECRET_KEY must be set")

// Config holds the runtime settings of the blog.
type Config struct {
	AppEnv      string
	Addr        string
	DatabaseURL string
	SecretKey   string
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitMax    int
	RateLimitWindow time.Duration
	// TrustProxy honours X-Forwarded-For and X-Real-IP. Only enable it
	// behind a reverse proxy that overwrites those headers.
	TrustProxy bool

	TokenExpiry        time.Duration
	SessionMaxAge      time.Duration
	PasswordIterations int
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("could not read .env file: %v", err)
	}

	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Addr:               getEnv("ADDR", ":5002"),
		DatabaseURL:        getEnv("DATABASE_URL", "sqlite://posts.db"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RateLimitMax:       getEnvInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		TrustProxy:         getEnvBool("TRUST_PROXY", false),
		TokenExpiry:        getEnvDuration("TOKEN_EXPIRY", 24*time.Hour),
		SessionMaxAge:      getEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour),
		PasswordIterations: getEnvInt("PASSWORD_ITERATIONS", 600000),
	}
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// RequireSecret fails when no signing secret is configured.
func (c *Config) RequireSecret() error {
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logrus.Warnf("invalid integer for %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		logrus.Warnf("invalid duration for %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		logrus.Warnf("invalid boolean for %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return value
}
