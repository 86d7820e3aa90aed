package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer     string        // Issuer claim for session tokens (default: taskdeck)
	JWTSecret  string        // Required in prod; generated at startup in dev when unset
	SessionTTL time.Duration // Session token lifetime (default: 24h)

	DatabaseFile string // Path to SQLite database file (default: ./taskdeck.db)
	Pepper       string // Optional pepper mixed into password hashing

	// Cold-start affordance: when the users table is empty and both values
	// are set, an admin account is seeded at startup. Registration is
	// invite-gated, so without this the first admin has no way in.
	AdminEmail    string
	AdminPassword string

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:     getEnvOrDefault("TASKDECK_ISSUER", "taskdeck"),
		JWTSecret:  os.Getenv("TASKDECK_JWT_SECRET"),
		SessionTTL: getEnvDurationOrDefault("TASKDECK_SESSION_TTL", 24*time.Hour),

		DatabaseFile: getEnvOrDefault("TASKDECK_DATABASE_FILE", "taskdeck.db"),
		Pepper:       os.Getenv("TASKDECK_PEPPER"),

		AdminEmail:    os.Getenv("TASKDECK_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("TASKDECK_ADMIN_PASSWORD"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are treated as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
