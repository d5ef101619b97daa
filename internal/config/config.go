package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, sourced from USERHUB_* env vars.
type Config struct {
	Addr        string        `env:"USERHUB_ADDR" envDefault:":8080"`
	DatabaseDSN string        `env:"USERHUB_PG_DSN"`
	TokenSecret string        `env:"USERHUB_TOKEN_SECRET"`
	TokenIssuer string        `env:"USERHUB_TOKEN_ISSUER" envDefault:"userhub"`
	TokenTTL    time.Duration `env:"USERHUB_TOKEN_TTL" envDefault:"24h"`

	GoogleClientID     string `env:"USERHUB_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"USERHUB_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"USERHUB_GOOGLE_REDIRECT_URI"`

	// OAuthSuccessURL receives the token after a completed Google flow.
	OAuthSuccessURL string `env:"USERHUB_OAUTH_SUCCESS_URL" envDefault:"/oauth2/redirect"`

	// OAuthRelinkPolicy decides what happens when a Google assertion
	// arrives for an email that already has a local account:
	// "upgrade" converts the account in place, "reject" answers 409.
	OAuthRelinkPolicy string `env:"USERHUB_OAUTH_RELINK_POLICY" envDefault:"upgrade"`

	MaxBodyBytes int64 `env:"USERHUB_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load parses configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return Config{}, fmt.Errorf("config: USERHUB_TOKEN_SECRET is required")
	}
	switch cfg.OAuthRelinkPolicy {
	case "upgrade", "reject":
	default:
		return Config{}, fmt.Errorf("config: USERHUB_OAUTH_RELINK_POLICY must be %q or %q, got %q",
			"upgrade", "reject", cfg.OAuthRelinkPolicy)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("config: USERHUB_TOKEN_TTL must be positive")
	}
	return cfg, nil
}
