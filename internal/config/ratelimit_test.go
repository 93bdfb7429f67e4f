package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_TOKENS",
		"RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_KEY_STRATEGY",
		"RATE_LIMIT_PREFIX",
	} {
		t.Setenv(key, "")
	}
	cfg := LoadRateLimitConfig()
	if !cfg.Enabled {
		t.Error("limiter should default to enabled")
	}
	if cfg.Capacity != 120 || cfg.RefillTokens != 2 || cfg.RefillInterval != time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Prefix != "ratelimit" || cfg.KeyStrategy != "ip_user_route" {
		t.Errorf("unexpected key defaults: %+v", cfg)
	}
}

func TestLoadRateLimitConfig_Overrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "5")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_TTL", "1s") // below the floor, must be raised

	cfg := LoadRateLimitConfig()
	if cfg.Enabled {
		t.Error("RATE_LIMIT_ENABLED=off not honored")
	}
	if cfg.Capacity != 5 || cfg.RefillInterval != 2*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if want := 5 * cfg.RefillInterval; cfg.TTL != want {
		t.Errorf("TTL = %v, want floor %v", cfg.TTL, want)
	}
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "-3")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "not-a-duration")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 || cfg.RefillInterval != time.Second {
		t.Errorf("clamps not applied: %+v", cfg)
	}
}
