package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEFAULT_LANGUAGE", "")
	t.Setenv("BOOKING_REVERT_DELAY", "")
	t.Setenv("CHAT_PROVIDER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DefaultLanguage != "ko" {
		t.Fatalf("expected default language ko, got %s", cfg.DefaultLanguage)
	}
	if cfg.BookingRevertDelay != 3*time.Second {
		t.Fatalf("expected 3s revert delay, got %s", cfg.BookingRevertDelay)
	}
	if cfg.ChatProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %s", cfg.ChatProvider)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config reported production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DEFAULT_LANGUAGE", " EN ")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("BOOKING_REVERT_DELAY", "500ms")
	t.Setenv("BOOKING_WEBHOOK_URL", "https://script.example/exec")
	t.Setenv("CHAT_PROVIDER", "Bedrock")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.DefaultLanguage != "en" {
		t.Fatalf("expected normalized language, got %q", cfg.DefaultLanguage)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if cfg.BookingRevertDelay != 500*time.Millisecond {
		t.Fatalf("expected revert delay override, got %s", cfg.BookingRevertDelay)
	}
	if cfg.BookingWebhookURL != "https://script.example/exec" {
		t.Fatalf("expected webhook override, got %s", cfg.BookingWebhookURL)
	}
	if cfg.ChatProvider != "bedrock" {
		t.Fatalf("expected lower-cased provider, got %s", cfg.ChatProvider)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 7 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BOOKING_REVERT_DELAY", "soon")
	t.Setenv("RATE_LIMIT_BURST", "lots")
	cfg := Load()
	if cfg.BookingRevertDelay != 3*time.Second {
		t.Fatalf("expected fallback revert delay, got %s", cfg.BookingRevertDelay)
	}
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("expected fallback burst, got %d", cfg.RateLimitBurst)
	}
}
