package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"HOST"`
	Port               string `env:"PORT" envDefault:"5432"`
	User               string `env:"USER"`
	Password           string `env:"PASSWORD"`
	Name               string `env:"NAME"`
	SSLMode            string `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// MinIOConfig holds object storage settings for tour images and user photos.
type MinIOConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"tourapi"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// JWTConfig controls session token signing and the cookie that carries it.
type JWTConfig struct {
	Secret          string        `env:"SECRET,notEmpty"`
	ExpiresIn       time.Duration `env:"EXPIRES_IN" envDefault:"2160h"`
	CookieExpiresIn time.Duration `env:"COOKIE_EXPIRES_IN" envDefault:"2160h"`
}

// MailConfig holds SMTP settings. An empty Host disables delivery and mails are only logged.
type MailConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"hello@tourapi.dev"`
	FromName string `env:"FROM_NAME" envDefault:"Tour API"`
}

// StripeConfig holds payment provider credentials.
type StripeConfig struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Currency      string `env:"CURRENCY" envDefault:"usd"`
}

// RateLimitConfig bounds requests per client IP on the API prefix.
type RateLimitConfig struct {
	Max    int           `env:"MAX" envDefault:"100"`
	Window time.Duration `env:"WINDOW" envDefault:"1h"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env           string          `env:"APP_ENV" envDefault:"development"`
	AppHost       string          `env:"APP_HOST" envDefault:"localhost:8080"`
	Port          string          `env:"PORT" envDefault:"8080"`
	Timezone      string          `env:"APP_TIMEZONE" envDefault:"UTC"`
	BaseURL       string          `env:"APP_BASE_URL"`
	JSONBodyLimit int             `env:"JSON_BODY_LIMIT" envDefault:"10240"`
	Database      DatabaseConfig  `envPrefix:"DB_"`
	MinIO         MinIOConfig     `envPrefix:"MINIO_"`
	JWT           JWTConfig       `envPrefix:"JWT_"`
	Mail          MailConfig      `envPrefix:"EMAIL_"`
	Stripe        StripeConfig    `envPrefix:"STRIPE_"`
	RateLimit     RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether error details must be hidden from clients.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves the configured timezone used for log timestamps, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
