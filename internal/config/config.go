// Package config holds process-wide settings parsed once at startup and
// passed explicitly into component constructors.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration for the API process.
type Config struct {
	Addr        string `env:"LASTSHOW_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"LASTSHOW_PG_DSN"`

	AuthSecret  string        `env:"LASTSHOW_AUTH_SECRET"`
	TokenIssuer string        `env:"LASTSHOW_TOKEN_ISSUER" envDefault:"lastshow"`
	TokenTTL    time.Duration `env:"LASTSHOW_TOKEN_TTL" envDefault:"30m"`

	GroqAPIKey string `env:"LASTSHOW_GROQ_API_KEY"`
	GroqModel  string `env:"LASTSHOW_GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`

	ImageUploadURL string `env:"LASTSHOW_IMAGE_UPLOAD_URL"`
	TTSURL         string `env:"LASTSHOW_TTS_URL"`

	S3Bucket       string `env:"LASTSHOW_S3_BUCKET"`
	S3Region       string `env:"LASTSHOW_S3_REGION" envDefault:"us-east-1"`
	S3AccessKey    string `env:"LASTSHOW_S3_ACCESS_KEY"`
	S3SecretKey    string `env:"LASTSHOW_S3_SECRET_KEY"`
	S3BaseEndpoint string `env:"LASTSHOW_S3_ENDPOINT"`

	MaxBodyBytes int64 `env:"LASTSHOW_MAX_BODY_BYTES" envDefault:"10485760"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.AuthSecret) == "" {
		return errors.New("LASTSHOW_AUTH_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("LASTSHOW_TOKEN_TTL must be positive")
	}
	return nil
}
