package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DISPATCH_WEBHOOK_SECRET", "DISPATCH_STRICT_VALIDATION",
		"GOOGLE_GEOCODING_API_KEY", "ALLOWED_ORIGINS", "DATABASE_URL",
		"GEOCODING_TIMEOUT", "IDEMPOTENCY_TTL", "IDEMPOTENCY_MAX_KEYS",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 8787 {
		t.Fatalf("Port = %d", cfg.Port)
	}
	if cfg.WebhookSecret != "" || cfg.StrictValidation {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.IdempotencyTTL != 24*time.Hour || cfg.IdempotencyMaxKeys != 100_000 {
		t.Fatalf("idempotency defaults: %v / %d", cfg.IdempotencyTTL, cfg.IdempotencyMaxKeys)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DISPATCH_WEBHOOK_SECRET", "s3cret")
	t.Setenv("DISPATCH_STRICT_VALIDATION", "true")
	t.Setenv("GOOGLE_GEOCODING_API_KEY", "geo-key")
	t.Setenv("ALLOWED_ORIGINS", "https://ops.example.com , https://backup.example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/dispatch")
	t.Setenv("IDEMPOTENCY_TTL", "2h")
	t.Setenv("IDEMPOTENCY_MAX_KEYS", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9090 || cfg.WebhookSecret != "s3cret" || !cfg.StrictValidation {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.GeocodingAPIKey != "geo-key" || cfg.DatabaseURL != "postgres://localhost/dispatch" {
		t.Fatalf("cfg = %+v", cfg)
	}
	want := []string{"https://ops.example.com", "https://backup.example.com"}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.IdempotencyTTL != 2*time.Hour || cfg.IdempotencyMaxKeys != 500 {
		t.Fatalf("idempotency: %v / %d", cfg.IdempotencyTTL, cfg.IdempotencyMaxKeys)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "70000"},
		{"bad strict flag", "DISPATCH_STRICT_VALIDATION", "maybe"},
		{"bad ttl", "IDEMPOTENCY_TTL", "soon"},
		{"negative ttl", "IDEMPOTENCY_TTL", "-1h"},
		{"bad max keys", "IDEMPOTENCY_MAX_KEYS", "0"},
		{"bad geocoding timeout", "GEOCODING_TIMEOUT", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
