package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values. It is loaded once at
// startup and never mutated afterwards.
type Config struct {
	AppPort      string
	DatabaseURL  string
	JWTSecret    string
	TokenExpires time.Duration
	BcryptCost   int

	CORSOrigins string

	ResendAPIKey string
	EmailFrom    string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
}

// Load reads environment variables and returns a populated Config. Missing
// JWT_SECRET or DATABASE_URL is fatal: the process refuses to start rather
// than run with an insecure default.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:      getEnv("APP_PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenExpires: getEnvMinutes("JWT_TTL_MINUTES", 60),
		BcryptCost:   getEnvInt("BCRYPT_COST", 0),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "onboarding@resend.dev"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:       getEnv("TWILIO_FROM", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}
