package config

import (
	"testing"
	"time"
)

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
	fn()
}

func TestLoadDefaults(t *testing.T) {
	withEnv(t, map[string]string{
		"DATABASE_URL":   "postgres://localhost/olt",
		"SESSION_SECRET": "0123456789abcdef0123456789abcdef",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != DefaultPort {
			t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
		}
		if cfg.RefreshInterval != DefaultRefreshInterval {
			t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, DefaultRefreshInterval)
		}
	})
}

func TestLoadOverrides(t *testing.T) {
	withEnv(t, map[string]string{
		"DATABASE_URL":         "postgres://localhost/olt",
		"SESSION_SECRET":       "0123456789abcdef0123456789abcdef",
		"PORT":                 "8443",
		"OLT_REFRESH_INTERVAL": "5m",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != 8443 {
			t.Errorf("Port = %d, want 8443", cfg.Port)
		}
		if cfg.RefreshInterval != 5*time.Minute {
			t.Errorf("RefreshInterval = %v, want 5m", cfg.RefreshInterval)
		}
	})
}

func TestLoadRejectsShortSecret(t *testing.T) {
	withEnv(t, map[string]string{
		"DATABASE_URL":   "postgres://localhost/olt",
		"SESSION_SECRET": "too-short",
	}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected an error for a short SESSION_SECRET")
		}
	})
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	withEnv(t, map[string]string{
		"SESSION_SECRET": "0123456789abcdef0123456789abcdef",
	}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected an error for a missing DATABASE_URL")
		}
	})
}
