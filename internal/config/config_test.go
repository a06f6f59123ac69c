package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/coupons")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	for _, k := range []string{"PORT", "REQUEST_TIMEOUT", "TOKEN_TTL", "CACHE_TTL", "REDEEM_ATTEMPTS", "ALLOWED_ORIGINS", "IMPORT_ARCHIVE_BUCKET"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("expected 7d token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.RedeemAttempts != 3 {
		t.Errorf("expected 3 redeem attempts, got %d", cfg.RedeemAttempts)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.Archive.Bucket != "" {
		t.Errorf("archive should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("expected 1m cache ttl, got %v", cfg.CacheTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "eighty")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}
