package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/quill/pkg/jwtx"
)

// Token store kinds.
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

type Config struct {
	Issuer         string // Optional: issuer claim for tokens (default: quill-auth)
	BootstrapToken string // Optional: token required to perform bootstrap

	AccessSecret    string        // Required: HMAC secret for access tokens
	RefreshSecret   string        // Required: HMAC secret for refresh tokens, distinct from AccessSecret
	AccessTTL       time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL      time.Duration // Optional: refresh token lifetime (default: 168h)
	RefreshRotation bool          // Optional: rotate refresh tokens on use (default: true)
	CookieSecure    bool          // Optional: Secure flag on the refresh cookie (default: true)

	TokenStore   string        // Optional: refresh token store (memory, redis) (default: memory)
	RedisURL     string        // Optional: redis connection URL
	RedisPrefix  string        // Optional: key prefix for refresh tokens in redis
	StoreTimeout time.Duration // Optional: deadline for each token store call (default: 2s)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile           string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:          getEnvOrDefault("AUTH_ISSUER", "quill-auth"),
		BootstrapToken:  os.Getenv("BOOTSTRAP_TOKEN"),
		AccessSecret:    os.Getenv("AUTH_ACCESS_SECRET"),
		RefreshSecret:   os.Getenv("AUTH_REFRESH_SECRET"),
		AccessTTL:       getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:      getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		RefreshRotation: getEnvBoolOrDefault("AUTH_REFRESH_ROTATION", true),
		CookieSecure:    getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),

		TokenStore:   getEnvOrDefault("AUTH_TOKEN_STORE", TokenStoreMemory),
		RedisURL:     getEnvOrDefault("AUTH_REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  getEnvOrDefault("AUTH_REDIS_PREFIX", "quill:refresh"),
		StoreTimeout: getEnvDurationOrDefault("AUTH_STORE_TIMEOUT", 2*time.Second),

		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate reports the first setting that would stop the service from
// issuing or verifying tokens.
func (c Config) Validate() error {
	switch {
	case c.AccessSecret == "":
		return errors.New("AUTH_ACCESS_SECRET is required")
	case c.RefreshSecret == "":
		return errors.New("AUTH_REFRESH_SECRET is required")
	case c.AccessSecret == c.RefreshSecret:
		return errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must differ")
	case c.AccessTTL <= 0 || c.RefreshTTL <= 0:
		return errors.New("token lifetimes must be positive")
	case c.AccessTTL > c.RefreshTTL:
		return fmt.Errorf("AUTH_ACCESS_TTL (%s) exceeds AUTH_REFRESH_TTL (%s)", c.AccessTTL, c.RefreshTTL)
	}

	switch c.TokenStore {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if c.RedisURL == "" {
			return errors.New("AUTH_REDIS_URL is required for the redis token store")
		}
	default:
		return fmt.Errorf("unknown AUTH_TOKEN_STORE %q", c.TokenStore)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
