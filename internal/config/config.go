package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ricirt/tier-probe/internal/domain"
)

// Config holds the server's runtime configuration loaded from environment
// variables at startup. Database settings are deliberately absent: they are
// re-read on every probe through ConnectionFromEnv.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Probe
	ProbeQueryTimeout time.Duration
	ProbeRateLimit    int
}

// Load reads the server configuration. defaultPort differs per binary.
func Load(defaultPort string) (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", defaultPort),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		ProbeQueryTimeout: getDuration("PROBE_QUERY_TIMEOUT", 5*time.Second),
		ProbeRateLimit:    getInt("PROBE_RATE_LIMIT", 0),
	}

	if cfg.ProbeRateLimit < 0 {
		return nil, fmt.Errorf("PROBE_RATE_LIMIT must not be negative, got %d", cfg.ProbeRateLimit)
	}
	if cfg.ProbeQueryTimeout <= 0 {
		return nil, fmt.Errorf("PROBE_QUERY_TIMEOUT must be positive, got %s", cfg.ProbeQueryTimeout)
	}
	return cfg, nil
}

// ConnectionFromEnv builds a fresh ConnectionConfig from DB_* variables.
// Values are passed through untouched; the driver is the only validator.
func ConnectionFromEnv() domain.ConnectionConfig {
	return domain.ConnectionConfig{
		Driver:         domain.Driver(getEnv("DB_DRIVER", string(domain.DriverMySQL))),
		Host:           os.Getenv("DB_HOST"),
		Port:           getPort("DB_PORT", domain.DefaultPort),
		Database:       os.Getenv("DB_NAME"),
		User:           os.Getenv("DB_USER"),
		Password:       domain.Secret(os.Getenv("DB_PASSWORD")),
		ConnectTimeout: domain.DefaultConnectTimeout,
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// getPort keeps a malformed value visible as domain.InvalidPort instead of
// falling back to the default, so the probe reports the misconfiguration.
func getPort(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return domain.InvalidPort
	}
	return n
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
