// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Addr is the address the HTTP server listens on (e.g. :3000).
	Addr string `mapstructure:"ADDR"`
	// DatabaseURL is the Postgres DSN. Empty falls back to the in-memory store
	// (development only; nothing survives a restart).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SessionSecret signs session payload tokens. Required in production.
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// GoogleClientID and GoogleClientSecret are the Google OAuth app credentials.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	// GoogleCallbackURL must match the redirect URI registered with Google.
	GoogleCallbackURL string `mapstructure:"GOOGLE_CALLBACK_URL"`

	// FacebookClientID and FacebookClientSecret are the Facebook app credentials.
	FacebookClientID     string `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `mapstructure:"FACEBOOK_CLIENT_SECRET"`
	// FacebookCallbackURL must match the redirect URI registered with Facebook.
	FacebookCallbackURL string `mapstructure:"FACEBOOK_CALLBACK_URL"`

	// Env is the application environment ("development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// devSessionSecret is only acceptable outside production; Load rejects it
// when APP_ENV=production.
const devSessionSecret = "whisperboard-dev-secret"

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI); env vars
// override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	// Every key needs a default: Unmarshal only surfaces keys viper already
	// knows about, and AutomaticEnv alone does not register env-only keys.
	v.SetDefault("ADDR", ":3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_CALLBACK_URL", "http://localhost:3000/auth/google/secrets")
	v.SetDefault("FACEBOOK_CLIENT_ID", "")
	v.SetDefault("FACEBOOK_CLIENT_SECRET", "")
	v.SetDefault("FACEBOOK_CALLBACK_URL", "http://localhost:3000/auth/facebook/secrets")
	v.SetDefault("APP_ENV", "development")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("config: ADDR must be set")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.Env == "production" {
		if cfg.SessionSecret == devSessionSecret {
			return nil, errors.New("config: SESSION_SECRET must be set when APP_ENV=production")
		}
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL must be set when APP_ENV=production")
		}
	}

	return &cfg, nil
}
