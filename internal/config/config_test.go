package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("EXCHANGE_TOKEN_TTL", "30m")
	t.Setenv("SERVER_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SEED_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("expected 5m access ttl, got %s", cfg.JWT.AccessTokenTTL)
	}
	if cfg.JWT.ExchangeTokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m exchange ttl, got %s", cfg.JWT.ExchangeTokenTTL)
	}
	if len(cfg.Server.AllowOrigins) != 2 || cfg.Server.AllowOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.Server.AllowOrigins)
	}
	if cfg.Redis.Addr != "cache:6380" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
	if !cfg.Seed.Enabled {
		t.Fatal("expected seeding enabled")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestValidateRejectsNonPositiveTTL(t *testing.T) {
	cfg := LoadTestConfig()
	cfg.JWT.RefreshTokenTTL = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDSNPrefersURL(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://u:p@db/iam", Host: "ignored"}
	if d.DSN() != "postgres://u:p@db/iam" {
		t.Fatalf("unexpected dsn %q", d.DSN())
	}

	d.URL = ""
	if !strings.Contains(d.DSN(), "host=ignored") {
		t.Fatalf("unexpected dsn %q", d.DSN())
	}
}
