package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOOKING_JWT_SECRET", "super-secret")
	t.Setenv("BOOKING_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("BOOKING_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("BOOKING_ADMIN_PASSWORD", "change-me")
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"BOOKING_HTTP_PORT",
			"BOOKING_SQLITE_DSN",
			"BOOKING_TOKEN_TTL",
			"BOOKING_CURRENCY",
			"BOOKING_SMTP_HOST",
			"BOOKING_SMTP_PORT",
			"BOOKING_MAIL_FROM",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
		setRequired(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:bookings.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.TokenTTL != 24*time.Hour {
			t.Fatalf("expected default token TTL 24h, got %s", cfg.TokenTTL)
		}
		if cfg.Currency != "eur" {
			t.Fatalf("expected default currency eur, got %q", cfg.Currency)
		}
		if cfg.SMTPConfigured() {
			t.Fatalf("expected SMTP unconfigured by default")
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"BOOKING_JWT_SECRET",
			"BOOKING_STRIPE_SECRET_KEY",
			"BOOKING_ADMIN_EMAIL",
			"BOOKING_ADMIN_PASSWORD",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		for _, key := range []string{"BOOKING_JWT_SECRET", "BOOKING_STRIPE_SECRET_KEY", "BOOKING_ADMIN_EMAIL", "BOOKING_ADMIN_PASSWORD"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in error message, got %q", key, err.Error())
			}
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_SQLITE_DSN", "file:/tmp/bookings.db")
		t.Setenv("BOOKING_TOKEN_TTL", "12h")
		t.Setenv("BOOKING_CURRENCY", "EUR")
		t.Setenv("BOOKING_SMTP_HOST", "smtp.example.com")
		t.Setenv("BOOKING_SMTP_PORT", "2525")
		t.Setenv("BOOKING_MAIL_FROM", "contact@example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.TokenTTL != 12*time.Hour {
			t.Fatalf("expected token TTL 12h, got %s", cfg.TokenTTL)
		}
		if cfg.Currency != "eur" {
			t.Fatalf("expected lowercased currency, got %q", cfg.Currency)
		}
		if cfg.SMTPPort != 2525 {
			t.Fatalf("expected SMTP port 2525, got %d", cfg.SMTPPort)
		}
		if !cfg.SMTPConfigured() {
			t.Fatalf("expected SMTP configured")
		}
	})

	t.Run("rejects invalid numeric values", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BOOKING_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid port")
		}
		if !strings.Contains(err.Error(), "BOOKING_HTTP_PORT") {
			t.Fatalf("expected BOOKING_HTTP_PORT in error, got %q", err.Error())
		}
	})
}
