package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8087" {
		t.Errorf("Port = %q, want 8087", cfg.Server.Port)
	}
	if cfg.Backend.Kind != "memory" {
		t.Errorf("Backend.Kind = %q, want memory", cfg.Backend.Kind)
	}
	if cfg.Backend.Key != "preferences:default" {
		t.Errorf("Backend.Key = %q, want preferences:default", cfg.Backend.Key)
	}
	if cfg.Persistence.DebounceWindow != 500*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 500ms", cfg.Persistence.DebounceWindow)
	}
	if cfg.Persistence.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.Persistence.CacheTTL)
	}
	if cfg.Persistence.RetryMaxAttempts != 4 {
		t.Errorf("RetryMaxAttempts = %d, want 4", cfg.Persistence.RetryMaxAttempts)
	}
	if cfg.Adaptive.RaiseStreak != 5 || cfg.Adaptive.LowerStreak != 3 {
		t.Errorf("Adaptive streaks = %d/%d, want 5/3", cfg.Adaptive.RaiseStreak, cfg.Adaptive.LowerStreak)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PREF_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("PREF_WRITE_DEBOUNCE", "250ms")
	t.Setenv("PREF_RETRY_MAX_ATTEMPTS", "6")
	t.Setenv("PREF_RETRY_BACKOFF_FACTOR", "1.5")
	t.Setenv("ADAPTIVE_RAISE_STREAK", "3")

	cfg := Load()

	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Server.Port)
	}
	if cfg.Backend.Kind != "redis" || cfg.Backend.RedisAddr != "localhost:6380" {
		t.Errorf("Backend = %q/%q, want redis/localhost:6380", cfg.Backend.Kind, cfg.Backend.RedisAddr)
	}
	if cfg.Persistence.DebounceWindow != 250*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 250ms", cfg.Persistence.DebounceWindow)
	}
	if cfg.Persistence.RetryMaxAttempts != 6 {
		t.Errorf("RetryMaxAttempts = %d, want 6", cfg.Persistence.RetryMaxAttempts)
	}
	if cfg.Persistence.RetryBackoffFactor != 1.5 {
		t.Errorf("RetryBackoffFactor = %g, want 1.5", cfg.Persistence.RetryBackoffFactor)
	}
	if cfg.Adaptive.RaiseStreak != 3 {
		t.Errorf("RaiseStreak = %d, want 3", cfg.Adaptive.RaiseStreak)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PREF_RETRY_MAX_ATTEMPTS", "many")
	t.Setenv("PREF_WRITE_DEBOUNCE", "soon")
	t.Setenv("PREF_RETRY_BACKOFF_FACTOR", "fast")

	cfg := Load()

	if cfg.Persistence.RetryMaxAttempts != 4 {
		t.Errorf("RetryMaxAttempts = %d, want fallback 4", cfg.Persistence.RetryMaxAttempts)
	}
	if cfg.Persistence.DebounceWindow != 500*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want fallback 500ms", cfg.Persistence.DebounceWindow)
	}
	if cfg.Persistence.RetryBackoffFactor != 2.0 {
		t.Errorf("RetryBackoffFactor = %g, want fallback 2.0", cfg.Persistence.RetryBackoffFactor)
	}
}
