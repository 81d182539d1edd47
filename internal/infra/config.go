package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// RedisAddr is optional; when empty the progress snapshot cache is
	// disabled and every request hits the store.
	RedisAddr     string
	RedisPassword string
	SnapshotTTL   time.Duration

	ProfileDir    string
	AutomationURL string

	DispatchInterval time.Duration
	SelectLimit      int
	MaxConcurrency   int
	SweepInterval    time.Duration
	StaleTimeout     time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		SnapshotTTL:      time.Second * time.Duration(getEnvInt("SNAPSHOT_TTL_SECONDS", 15)),
		ProfileDir:       getEnv("DIRECTORY_PROFILE_DIR", "./profiles"),
		AutomationURL:    os.Getenv("AUTOMATION_BASE_URL"),
		DispatchInterval: time.Second * time.Duration(getEnvInt("DISPATCH_INTERVAL_SECONDS", 15)),
		SelectLimit:      getEnvInt("DISPATCH_SELECT_LIMIT", 50),
		MaxConcurrency:   getEnvInt("MAX_GLOBAL_CONCURRENCY", 10),
		SweepInterval:    time.Minute * time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 5)),
		StaleTimeout:     time.Minute * time.Duration(getEnvInt("STALE_TOKEN_MINUTES", 10)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.MaxConcurrency < 1 {
		return nil, fmt.Errorf("MAX_GLOBAL_CONCURRENCY must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
