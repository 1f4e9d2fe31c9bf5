package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// StorageConfig describes one S3-compatible bucket (Cloudflare R2, AWS S3,
// MinIO). Endpoint may be empty for AWS itself.
type StorageConfig struct {
	Endpoint        string `env:"ENDPOINT"`
	Region          string `env:"REGION" envDefault:"auto"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Bucket          string `env:"BUCKET" envDefault:"avatars"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

func (s StorageConfig) Enabled() bool {
	return s.AccessKeyID != "" && s.SecretAccessKey != "" && s.Bucket != ""
}

type Config struct {
	DatabaseURL  string     `env:"DATABASE_URL,required,notEmpty"`
	JWTSecretKey string     `env:"JWT_SECRET_KEY,required,notEmpty"`
	ServerPort   int        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"5m"`
	UploadTimeout   time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"10s"`
	LocationMaxAge  time.Duration `env:"LOCATION_MAX_AGE" envDefault:"10m"`
	WizardIdleTTL   time.Duration `env:"WIZARD_IDLE_TTL" envDefault:"1h"`
	Timezone        string        `env:"TIMEZONE" envDefault:"America/Denver"`

	PrefsDBPath        string   `env:"PREFS_DB_PATH" envDefault:"data/prefs.db"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	Storage         StorageConfig `envPrefix:"STORAGE_"`
	FallbackStorage StorageConfig `envPrefix:"STORAGE_FALLBACK_"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.CleanupInterval <= 0 {
		return errors.New("CLEANUP_INTERVAL must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the zone used to render game times.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
