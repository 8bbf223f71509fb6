package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("WIZARD_SESSION_TTL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.WizardSessionTTL != 30*time.Minute {
		t.Fatalf("expected default session TTL, got %s", cfg.WizardSessionTTL)
	}
	if cfg.SlotDurationMins != 30 {
		t.Fatalf("expected default slot duration, got %d", cfg.SlotDurationMins)
	}
	if cfg.EmailProvider != "log" {
		t.Fatalf("expected log email provider by default, got %s", cfg.EmailProvider)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("WIZARD_SESSION_TTL", "45m")
	t.Setenv("CLINIC_OPEN_HOUR", "8")
	t.Setenv("CLINIC_CLOSE_HOUR", "18")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example.com, https://staging.example.com")
	t.Setenv("EMAIL_PROVIDER", "SES")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.WizardSessionTTL != 45*time.Minute {
		t.Fatalf("expected session TTL override, got %s", cfg.WizardSessionTTL)
	}
	if cfg.ClinicOpenHour != 8 || cfg.ClinicCloseHour != 18 {
		t.Fatalf("expected clinic hours override, got %d-%d", cfg.ClinicOpenHour, cfg.ClinicCloseHour)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("expected trimmed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected lowercased email provider, got %s", cfg.EmailProvider)
	}
}
