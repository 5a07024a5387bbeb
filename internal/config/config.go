package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the client. Everything is sourced
// from the environment so the binary stays twelve-factor friendly.
type Config struct {
	// ServerURL is the base URL of the watchroom API.
	ServerURL string `env:"WATCHROOM_API_URL" envDefault:"http://localhost:8000"`

	// CredentialsFile is where the bearer token is persisted between runs.
	// Empty means "resolve a default under the user's config dir".
	CredentialsFile string `env:"WATCHROOM_CREDENTIALS_FILE"`

	// TokenTTL bounds how long a persisted token is honored before the
	// client treats it as expired. Matches the server's 7-day cookie.
	TokenTTL time.Duration `env:"WATCHROOM_TOKEN_TTL" envDefault:"168h"`

	RequestTimeout time.Duration `env:"WATCHROOM_REQUEST_TIMEOUT" envDefault:"15s"`

	// ValidateVideoURLs toggles the URL-pattern check on room drafts.
	ValidateVideoURLs bool `env:"WATCHROOM_VALIDATE_VIDEO_URLS" envDefault:"true"`

	// EnforceTimeOrder toggles the startTime < endTime check on room drafts.
	EnforceTimeOrder bool `env:"WATCHROOM_ENFORCE_TIME_ORDER" envDefault:"true"`

	// RequestsPerSecond and Burst pace outgoing API calls.
	RequestsPerSecond float64 `env:"WATCHROOM_REQUESTS_PER_SECOND" envDefault:"5"`
	Burst             int     `env:"WATCHROOM_BURST" envDefault:"5"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.CredentialsFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.CredentialsFile = filepath.Join(dir, "watchroom", "credentials.json")
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL must be http or https, got %q", c.ServerURL)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.RequestsPerSecond <= 0 || c.Burst < 1 {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
