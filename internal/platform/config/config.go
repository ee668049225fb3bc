package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv           string `env:"APP_ENV" default:"development"`
	Port             string `env:"PORT" default:"8080"`
	ActivitiesAPIURL string `env:"ACTIVITIES_API_URL"`
	SessionSecret    string `env:"SESSION_SECRET"`
	LogLevel         string `env:"LOG_LEVEL" default:"info"`
	LogFormat        string `env:"LOG_FORMAT" default:"text"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"10s"`
	NoticeDuration  time.Duration `env:"NOTICE_DURATION" default:"3500ms"`
	SessionMaxAge   time.Duration `env:"SESSION_MAX_AGE" default:"24h"`

	MutationRateLimit float64 `env:"MUTATION_RATE_LIMIT" default:"5"`
	MutationRateBurst int     `env:"MUTATION_RATE_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	// Checked in a fixed order so the reported variable is deterministic.
	required := []struct{ name, value string }{
		{"ACTIVITIES_API_URL", cfg.ActivitiesAPIURL},
		{"SESSION_SECRET", cfg.SessionSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	u, err := url.Parse(cfg.ActivitiesAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ACTIVITIES_API_URL must be an absolute http(s) URL, got %q", cfg.ActivitiesAPIURL)
	}

	if len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(cfg.SessionSecret))
	}

	if cfg.NoticeDuration <= 0 {
		return fmt.Errorf("NOTICE_DURATION must be positive, got %s", cfg.NoticeDuration)
	}
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.MutationRateLimit <= 0 || cfg.MutationRateBurst < 1 {
		return fmt.Errorf("MUTATION_RATE_LIMIT and MUTATION_RATE_BURST must be positive")
	}

	return nil
}
