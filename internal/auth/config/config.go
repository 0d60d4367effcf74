package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the token-validation configuration for the auth module. This
// service does not issue credentials; it only validates tokens minted by the
// identity provider sharing the secret.
type Config struct {
	JWTSecretKey   string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"bookmark-sync-auth"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`

	CookieName string `env:"COOKIE_NAME" envDefault:"bm_auth_token"`
}

// LoadConfig loads configuration from environment variables and applies
// defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load auth configuration from environment: " + err.Error())
	}

	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt_secret_key is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("access_token_ttl must be positive")
	}

	return cfg, nil
}
