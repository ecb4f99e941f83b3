package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("PORT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "5001" {
		t.Fatalf("expected default port 5001, got %s", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadOriginsCSV(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, https://b.example ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
}

func TestGetIntFallback(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "-3")
	if got := getInt("DB_MAX_OPEN_CONNS", 30); got != 30 {
		t.Fatalf("expected fallback 30, got %d", got)
	}
	t.Setenv("DB_MAX_OPEN_CONNS", "12")
	if got := getInt("DB_MAX_OPEN_CONNS", 30); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
}
