package config

import (
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings. The admin allowlist is part
// of the config so callers can thread it into the auth layer explicitly
// instead of reading a process-wide global.
type Config struct {
	// SiteURL is the externally reachable base URL, used to build
	// magic-link and email URLs. No trailing slash.
	SiteURL string

	// AdminEmails is the allowlist of admin addresses, lower-cased.
	AdminEmails []string

	SMTP SMTPConfig
}

// SMTPConfig holds the transactional email settings. Email sending is
// skipped (with a logged warning) when Host or From is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether enough SMTP settings are present to send mail.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

// Load reads configuration from a .env file (if present) and the
// environment. ADMIN_EMAILS is required and must contain at least one valid
// address.
func Load() (*Config, error) {
	_ = godotenv.Load()

	emails, err := parseAdminEmails(os.Getenv("ADMIN_EMAILS"))
	if err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	return &Config{
		SiteURL:     strings.TrimSuffix(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		AdminEmails: emails,
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     port,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}, nil
}

// parseAdminEmails splits a comma-separated list, normalizes to lower case,
// and validates each address.
func parseAdminEmails(raw string) ([]string, error) {
	var emails []string
	for _, part := range strings.Split(raw, ",") {
		email := strings.ToLower(strings.TrimSpace(part))
		if email == "" {
			continue
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("invalid admin email %q: %w", email, err)
		}
		emails = append(emails, email)
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("ADMIN_EMAILS must list at least one address")
	}
	return emails, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
