package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokend/pkg/jwtx"
)

type Config struct {
	Issuer   string   // Issuer claim stamped on every access token
	Audience []string // Audiences stamped on access tokens and required on verification

	Algorithm      string        // JWT signing algorithm (HS256, EdDSA) (default: EdDSA)
	HS256Key       string        // Symmetric key for HS256 (min 32 bytes); TOKEND_HS256_KEY or contents of TOKEND_HS256_KEY_FILE
	SigningKeyFile string        // Path to Ed25519 PKCS8 PEM; empty means ephemeral keys generated at startup
	AccessTTL      time.Duration // Access token lifetime (default: 1h)
	RefreshTTL     time.Duration // Refresh token lifetime (default: 168h)

	DatabaseFile string // Path to SQLite database file (default: ./tokend.db)

	BootstrapEmail    string // Optional: seed admin email, created only on an empty user table
	BootstrapPassword string // Optional: seed admin password
	BootstrapName     string // Optional: seed admin display name

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-token sweep interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:    getEnvOrDefault("TOKEND_ISSUER", "tokend"),
		Algorithm: getEnvOrDefault("TOKEND_ALGORITHM", "EdDSA"),

		HS256Key:       os.Getenv("TOKEND_HS256_KEY"),
		SigningKeyFile: os.Getenv("TOKEND_SIGNING_KEY_FILE"),

		AccessTTL:  getEnvDurationOrDefault("TOKEND_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("TOKEND_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		DatabaseFile: getEnvOrDefault("TOKEND_DATABASE_FILE", "tokend.db"),

		BootstrapEmail:    os.Getenv("TOKEND_BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("TOKEND_BOOTSTRAP_PASSWORD"),
		BootstrapName:     getEnvOrDefault("TOKEND_BOOTSTRAP_NAME", "Administrator"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// Audience is comma-separated. Empty means verifiers skip the audience
	// check entirely, so the default pins tokens to this service's API.
	aud := getEnvOrDefault("TOKEND_AUDIENCE", "tokend")
	for _, a := range strings.Split(aud, ",") {
		if a = strings.TrimSpace(a); a != "" {
			cfg.Audience = append(cfg.Audience, a)
		}
	}

	// An HS256 key can come from a file instead of the environment.
	if cfg.HS256Key == "" {
		if path := os.Getenv("TOKEND_HS256_KEY_FILE"); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				cfg.HS256Key = strings.TrimSpace(string(data))
			}
		}
	}

	return cfg
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accepts duration syntax ("1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
