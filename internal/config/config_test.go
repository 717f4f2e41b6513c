package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage != StorageMongo || cfg.RunAddress != "localhost:5000" || !cfg.Seed {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestEnvOverridesFlags(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("RUN_ADDRESS", ":9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SEED", "false")
	t.Setenv("PROMO_SWEEP_INTERVAL", "0s")

	cfg, err := Load([]string{"-storage", "postgres", "-a", ":8081"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.RunAddress != ":9000" {
		t.Errorf("env must win over flags, got %s %s", cfg.Storage, cfg.RunAddress)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.Seed || cfg.SweepInterval != 0 {
		t.Errorf("unexpected ttl/seed/sweep %v/%v/%v", cfg.CacheTTL, cfg.Seed, cfg.SweepInterval)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	if _, err := Load([]string{"-storage", "sqlite"}); err == nil {
		t.Error("expected unknown storage error")
	}

	t.Setenv("MONGODB_TRANSACTIONS", "maybe")
	if _, err := Load(nil); err == nil {
		t.Error("expected bool parse error")
	}
}
