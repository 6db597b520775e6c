package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("MUTATION_LOCK_TTL", "5s")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")
	t.Setenv("RECEIPTS_ENABLED", "false")
	t.Setenv("APP_TIMEZONE", "Africa/Nairobi")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Fatalf("expected port 9999, got %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
	if cfg.MutationLockTTL != 5*time.Second {
		t.Fatalf("expected 5s lock ttl, got %s", cfg.MutationLockTTL)
	}
	if cfg.DashboardCacheTTL != 30*time.Second {
		t.Fatalf("expected default cache ttl, got %s", cfg.DashboardCacheTTL)
	}
	if cfg.ReceiptsEnabled {
		t.Fatal("expected receipts disabled")
	}
	if cfg.Location().String() != "Africa/Nairobi" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location())
	}
}
