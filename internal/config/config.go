// Package config loads runtime configuration from the environment, the
// way pkg/agent/config.go loads the agent's JSON config — except the
// source here is os.Getenv per spec §6, which names DATABASE_URL and
// SESSION_SECRET as the two required variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPort            = 5000
	DefaultRefreshInterval = 60 * time.Minute
	MinSessionSecretLen    = 32
)

// Config is the process-wide runtime configuration, loaded once at
// startup.
type Config struct {
	DatabaseURL     string
	SessionSecret   string
	Port            int
	RefreshInterval time.Duration
}

// Load reads Config from the environment, applying the defaults spec §6
// names for PORT and OLT_REFRESH_INTERVAL.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		Port:            DefaultPort,
		RefreshInterval: DefaultRefreshInterval,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if len(cfg.SessionSecret) < MinSessionSecretLen {
		return Config{}, fmt.Errorf("config: SESSION_SECRET must be at least %d characters, got %d", MinSessionSecretLen, len(cfg.SessionSecret))
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: PORT: %w", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("OLT_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: OLT_REFRESH_INTERVAL: %w", err)
		}
		cfg.RefreshInterval = d
	}

	return cfg, nil
}
