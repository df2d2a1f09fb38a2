package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, populated from the environment.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3000"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"marketplace"`

	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"root:@tcp(localhost:3306)/template_marketplace?parseTime=true"`

	UploadsDir    string `env:"UPLOADS_DIR" envDefault:"uploads"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// PaymentSuccessRate is the simulated gateway approval probability.
	PaymentSuccessRate float64 `env:"PAYMENT_SUCCESS_RATE" envDefault:"0.8"`
	PhoneCountryCode   string  `env:"PHONE_COUNTRY_CODE" envDefault:"254"`

	LoginRateLimit    int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	PaymentRateLimit  int           `env:"PAYMENT_RATE_LIMIT" envDefault:"30"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RevenueSnapshotAt time.Duration `env:"REVENUE_SNAPSHOT_INTERVAL" envDefault:"1m"`

	SeedDefaults bool `env:"SEED_DEFAULTS" envDefault:"true"`
}

// Load reads .env when present and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.PaymentSuccessRate < 0 || cfg.PaymentSuccessRate > 1 {
		return Config{}, fmt.Errorf("PAYMENT_SUCCESS_RATE must be within [0,1], got %v", cfg.PaymentSuccessRate)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
