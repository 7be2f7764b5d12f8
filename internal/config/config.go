package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	defaultDatabaseURL = "voiceagent.db"
	defaultListenAddr  = ":8080"
)

type Config struct {
	AppEnv       string
	ListenAddr   string
	DatabaseURL  string
	AdminAPIKey  string
	ToolAPIKey   string
	WebhookKey   string
	DemoFallback bool

	GoogleClientID     string
	GoogleClientSecret string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.AdminAPIKey = strings.TrimSpace(os.Getenv("ADMIN_API_KEY"))
	cfg.ToolAPIKey = strings.TrimSpace(os.Getenv("TOOL_API_KEY"))
	cfg.WebhookKey = strings.TrimSpace(os.Getenv("WEBHOOK_API_KEY"))
	cfg.GoogleClientID = strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID"))
	cfg.GoogleClientSecret = strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET"))

	// Tenant fallback to the demo business is an explicit flag, never ambient
	// state: only non-production deployments may absorb unresolved tenants.
	cfg.DemoFallback = !IsProdLike(cfg.AppEnv)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if IsProdLike(cfg.AppEnv) {
		if cfg.AdminAPIKey == "" {
			return fmt.Errorf("in prod/release ADMIN_API_KEY must be set")
		}
		if cfg.ToolAPIKey == "" {
			return fmt.Errorf("in prod/release TOOL_API_KEY must be set")
		}
		if cfg.WebhookKey == "" {
			return fmt.Errorf("in prod/release WEBHOOK_API_KEY must be set")
		}
	}
	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func getEnv(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
