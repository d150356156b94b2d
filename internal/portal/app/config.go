package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer    string // Issuer claim for portal access tokens (default: borealfin-portal)
	JWTSecret string // Required in prod: HS256 signing secret for portal access tokens

	DatabaseFile string // Path to SQLite database file (default: ./portal.db)

	RedisAddr     string // Fast-tier redis address (default: localhost:6379)
	RedisPassword string // Optional: fast-tier redis password
	RedisDB       int    // Optional: fast-tier redis database index

	StaffBaseURL string // Base URL of the staff backend (default: http://localhost:9000)
	ESignBaseURL string // Base URL of the e-signature proxy (defaults to StaffBaseURL)

	DevEchoOTP bool // Dev/demo only: echo generated one-time codes to the caller

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	SnapshotMaxAge       time.Duration // Draft snapshot retention (default: 720h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:    getEnvOrDefault("PORTAL_ISSUER", "borealfin-portal"),
		JWTSecret: os.Getenv("PORTAL_JWT_SECRET"),

		DatabaseFile: getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),

		RedisAddr:     getEnvOrDefault("PORTAL_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("PORTAL_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("PORTAL_REDIS_DB", 0),

		StaffBaseURL: getEnvOrDefault("PORTAL_STAFF_BASE_URL", "http://localhost:9000"),
		ESignBaseURL: os.Getenv("PORTAL_ESIGN_BASE_URL"),

		DevEchoOTP: getEnvBoolOrDefault("PORTAL_DEV_ECHO_OTP", false),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		SnapshotMaxAge:       getEnvDurationOrDefault("PORTAL_SNAPSHOT_MAX_AGE", 30*24*time.Hour),
	}

	if cfg.ESignBaseURL == "" {
		cfg.ESignBaseURL = cfg.StaffBaseURL
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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
