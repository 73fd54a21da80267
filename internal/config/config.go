package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath string
	Port         string
	Environment  string
	LogLevel     string

	CatalogBaseURL string
	CatalogTimeout time.Duration

	// Pricing constants: the kama budget for one full experience unit and
	// the experience value that counts as one full unit.
	PaymentLimit float64
	MaxXP        float64

	AllowedOrigins []string

	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSenderEmail string
	MailgunSenderName  string
	AlertRecipient     string
}

func Load() *Config {
	// Missing .env is fine, env vars still apply.
	_ = godotenv.Load()

	return &Config{
		DatabasePath: getEnv("DATABASE_PATH", "kamatrack.db"),
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),

		CatalogBaseURL: getEnv("CATALOG_BASE_URL", "https://api.dofusdu.de/dofus2/es"),
		CatalogTimeout: getDuration("CATALOG_TIMEOUT", 30*time.Second),

		PaymentLimit: getFloat("PAYMENT_LIMIT", 20000),
		MaxXP:        getFloat("MAX_XP", 100),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),

		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "alerts@kamatrack.local"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Kamatrack"),
		AlertRecipient:     getEnv("ALERT_RECIPIENT", ""),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
