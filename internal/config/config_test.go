package config

import (
	"testing"
	"time"
)

func TestLoadWithPrefix(t *testing.T) {
	t.Run("Postgres From Env", func(t *testing.T) {
		t.Setenv("CFGTEST_PRIMARY__ENV", "production")
		t.Setenv("CFGTEST_SERVER__PORT", "9090")
		t.Setenv("CFGTEST_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("CFGTEST_DATABASE__DRIVER", "postgres")
		t.Setenv("CFGTEST_DATABASE__HOST", "db")
		t.Setenv("CFGTEST_DATABASE__USER", "anime")
		t.Setenv("CFGTEST_DATABASE__NAME", "anime")
		t.Setenv("CFGTEST_DATABASE__SSL_MODE", "require")

		cfg, err := LoadWithPrefix("CFGTEST_")
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("expected port 9090, got %s", cfg.Server.Port)
		}
		if cfg.Database.Port != 5432 {
			t.Errorf("expected default port 5432, got %d", cfg.Database.Port)
		}
		if cfg.Database.SSLMode != "require" {
			t.Errorf("expected ssl mode require, got %s", cfg.Database.SSLMode)
		}
		if len(cfg.Server.CORSAllowedOrigins) != 2 || cfg.Server.CORSAllowedOrigins[1] != "https://b.example" {
			t.Errorf("unexpected origins %v", cfg.Server.CORSAllowedOrigins)
		}
		if cfg.Observability.Environment != "production" {
			t.Errorf("expected observability env production, got %s", cfg.Observability.Environment)
		}
		if cfg.Observability.ServiceName != ServiceName {
			t.Errorf("expected service name %s, got %s", ServiceName, cfg.Observability.ServiceName)
		}
	})

	t.Run("Postgres Missing Host", func(t *testing.T) {
		t.Setenv("CFGBAD_DATABASE__DRIVER", "postgres")

		if _, err := LoadWithPrefix("CFGBAD_"); err == nil {
			t.Error("expected validation error for missing postgres fields")
		}
	})

	t.Run("SQLite", func(t *testing.T) {
		t.Setenv("CFGLITE_DATABASE__DRIVER", "sqlite")
		t.Setenv("CFGLITE_DATABASE__PATH", ":memory:")
		t.Setenv("CFGLITE_OBSERVABILITY__LOGGING__LEVEL", "warn")
		t.Setenv("CFGLITE_OBSERVABILITY__HEALTH_CHECKS__ENABLED", "true")
		t.Setenv("CFGLITE_OBSERVABILITY__HEALTH_CHECKS__TIMEOUT", "2s")

		cfg, err := LoadWithPrefix("CFGLITE_")
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if !cfg.IsLocal() {
			t.Error("expected local env by default")
		}
		if cfg.Observability.GetLogLevel() != "warn" {
			t.Errorf("expected warn, got %s", cfg.Observability.GetLogLevel())
		}
		if cfg.Observability.HealthChecks.Timeout != 2*time.Second {
			t.Errorf("expected 2s timeout, got %s", cfg.Observability.HealthChecks.Timeout)
		}
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		t.Setenv("CFGDRV_DATABASE__DRIVER", "mysql")

		if _, err := LoadWithPrefix("CFGDRV_"); err == nil {
			t.Error("expected error for unsupported driver")
		}
	})
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Server.RateLimit != 0 {
		t.Errorf("rate limit should stay disabled, got %v", cfg.Server.RateLimit)
	}
}

func TestObservabilityValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown level")
	}

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown format")
	}

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Level = ""
	cfg.Environment = "production"
	if cfg.GetLogLevel() != "info" {
		t.Errorf("expected info in production, got %s", cfg.GetLogLevel())
	}
	if cfg.NewRelicEnabled() {
		t.Error("new relic must be off without a license key")
	}
}
