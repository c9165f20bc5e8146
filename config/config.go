package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrConfigurationMissing = errors.New("configuration missing")

const (
	StoreDriverMySQL    = "mysql"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	HTTPHost     string
	HTTPPort     string
	GRPCHost     string
	GRPCPort     string
	StoreDriver  string
	StoreDSN     string
	StoreTimeout time.Duration
	RedisURL     string
	CacheTTL     time.Duration
	LogLevel     string
	LogFormat    string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	driver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreDriverMySQL)))
	switch driver {
	case StoreDriverMySQL, StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}

	dsn := strings.TrimSpace(os.Getenv("STORE_DSN"))
	if dsn == "" && driver != StoreDriverMemory {
		return nil, fmt.Errorf("%w: STORE_DSN environment variable is required", ErrConfigurationMissing)
	}

	return &Config{
		HTTPHost:     getEnv("HTTP_HOST", ""),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		GRPCHost:     getEnv("GRPC_HOST", ""),
		GRPCPort:     getEnv("GRPC_PORT", "9090"),
		StoreDriver:  driver,
		StoreDSN:     dsn,
		StoreTimeout: getDurationEnv("STORE_TIMEOUT", 5*time.Second),
		RedisURL:     strings.TrimSpace(os.Getenv("REDIS_URL")),
		CacheTTL:     getDurationEnv("CACHE_TTL", time.Minute),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}, nil
}

func (c *Config) DSN() string {
	return c.StoreDSN
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv accepts Go duration strings ("5s", "2m") and bare integers as minutes.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
