package config

import (
	"fmt"
	"os"
	"strconv"

	"dunning/internal/logger"
)

type Config struct {
	// Accounting system (JSON-RPC) configuration
	OdooURL      string
	OdooDatabase string
	OdooUsername string
	OdooPassword string

	// Reference-lookup batching
	BatchSize         int
	RPCRequestsPerSec float64

	// Mail configuration
	MailProvider   string // mailgun, sendgrid, dryrun
	MailSender     string
	MailgunDomain  string
	MailgunAPIKey  string
	SendGridAPIKey string

	// Dashboard API
	ServeAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OdooURL:           getEnv("ODOO_URL", ""),
		OdooDatabase:      getEnv("ODOO_DB", ""),
		OdooUsername:      getEnv("ODOO_USERNAME", ""),
		OdooPassword:      getEnv("ODOO_PASSWORD", ""),
		BatchSize:         getEnvInt("LOOKUP_BATCH_SIZE", 1000),
		RPCRequestsPerSec: getEnvFloat("RPC_REQUESTS_PER_SEC", 4),
		MailProvider:      getEnv("MAIL_PROVIDER", "dryrun"),
		MailSender:        getEnv("MAIL_SENDER", ""),
		MailgunDomain:     getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:     getEnv("MAILGUN_API_KEY", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		ServeAddr:         getEnv("SERVE_ADDR", ":8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.OdooURL == "" {
		return fmt.Errorf("ODOO_URL is required")
	}
	if c.OdooDatabase == "" {
		return fmt.Errorf("ODOO_DB is required")
	}
	if c.OdooUsername == "" {
		return fmt.Errorf("ODOO_USERNAME is required")
	}
	if c.OdooPassword == "" {
		return fmt.Errorf("ODOO_PASSWORD is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("LOOKUP_BATCH_SIZE must be positive")
	}
	return nil
}

// ValidateMail checks the settings the chosen mail provider needs. It is
// separate from validate so that fetch/serve work without mail credentials.
func (c *Config) ValidateMail() error {
	switch c.MailProvider {
	case "dryrun":
		return nil
	case "mailgun":
		if c.MailgunDomain == "" || c.MailgunAPIKey == "" {
			return fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY are required for provider mailgun")
		}
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required for provider sendgrid")
		}
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}
	if c.MailSender == "" {
		return fmt.Errorf("MAIL_SENDER is required to send reminders")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
