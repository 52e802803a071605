// Package config loads application configuration from the environment.
//
// A .env file in the working directory is loaded first (development
// convenience); real environment variables always win. The struct tags are
// consumed by caarlos0/env, so adding a setting means adding a field.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the server and the reaper need.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/sniphub.db"`

	// JWTSecret signs session tokens. There is no default: an empty secret
	// would make every token forgeable.
	JWTSecret string `env:"JWT_SECRET"`

	// FrontendBaseURL is the base for verification links sent by mail,
	// e.g. https://sniphub.example.com → .../verify?token=<token>.
	FrontendBaseURL string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	// NoReplyEmail is the From address for outbound mail; AdminEmail
	// receives reaper failure alerts.
	NoReplyEmail string `env:"NO_REPLY_EMAIL"`
	AdminEmail   string `env:"ADMIN_EMAIL"`

	// ReaperRetention is how long an unverified account survives before the
	// reaper deletes it.
	ReaperRetention time.Duration `env:"REAPER_RETENTION" envDefault:"24h"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine — production sets real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	return cfg, nil
}
