package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds process configuration read from the environment.
type Config struct {
	Port            string
	DatabaseDSN     string
	JWTSecret       string
	LogLevel        string
	LogFormat       string
	SeedReference   bool
	ShutdownTimeout time.Duration
	CORSOrigin      string
}

// Load reads an optional .env file, then the environment.
// A missing .env is reported through envFileErr so the caller can log it once a logger exists.
func Load() (cfg *Config, envFileErr error) {
	envFileErr = godotenv.Load()

	cfg = &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseDSN:     getEnv("DB_DSN", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "json")),
		SeedReference:   getEnvBool("SEED_REFERENCE", true),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
	}
	return cfg, envFileErr
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("invalid LOG_FORMAT %q (want json or console)", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
