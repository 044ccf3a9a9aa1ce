package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	JWTSecret       string
	TokenTTL        time.Duration
	StripeSecretKey string
	Currency        string
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	MailFrom        string
	AdminEmail      string
	AdminPassword   string
}

// SMTPConfigured reports whether an SMTP relay is fully configured. Without
// one, notification emails are written to the log instead.
func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "file:bookings.db?_foreign_keys=on",
		TokenTTL:  24 * time.Hour,
		Currency:  "eur",
		SMTPPort:  587,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("BOOKING_JWT_SECRET")); secret == "" {
		missing = append(missing, "BOOKING_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_TOKEN_TTL")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if key := strings.TrimSpace(os.Getenv("BOOKING_STRIPE_SECRET_KEY")); key == "" {
		missing = append(missing, "BOOKING_STRIPE_SECRET_KEY")
	} else {
		cfg.StripeSecretKey = key
	}

	if currency := strings.TrimSpace(os.Getenv("BOOKING_CURRENCY")); currency != "" {
		cfg.Currency = strings.ToLower(currency)
	}

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("BOOKING_SMTP_HOST"))
	if portValue := strings.TrimSpace(os.Getenv("BOOKING_SMTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_SMTP_PORT")
		} else {
			cfg.SMTPPort = port
		}
	}
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("BOOKING_SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("BOOKING_SMTP_PASSWORD")
	cfg.MailFrom = strings.TrimSpace(os.Getenv("BOOKING_MAIL_FROM"))

	if email := strings.TrimSpace(os.Getenv("BOOKING_ADMIN_EMAIL")); email == "" {
		missing = append(missing, "BOOKING_ADMIN_EMAIL")
	} else {
		cfg.AdminEmail = email
	}

	if password := os.Getenv("BOOKING_ADMIN_PASSWORD"); password == "" {
		missing = append(missing, "BOOKING_ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variables d'environnement requises manquantes : %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valeurs de variables d'environnement invalides : %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
