package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "STORE_DSN", "SESSION_TTL", "GRPC_PORT"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "3000" || cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "ombor.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.GRPCPort != "" {
		t.Fatal("grpc should be off by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("SESSION_TTL", "30m")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.Store.Driver != "redis" || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable SESSION_TTL")
	}
}
