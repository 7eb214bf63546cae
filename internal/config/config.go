package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	LogLevelName string        `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel     slog.Level

	DatabasePath string `env:"DATABASE_PATH"`

	// upstream backend holding participation rows
	SourceURL     string `env:"SOURCE_URL"`
	SourceAPIKey  string `env:"SOURCE_API_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	LoginPath         string   `env:"LOGIN_PATH" envDefault:"/login"`
	SessionCookie     string   `env:"SESSION_COOKIE" envDefault:"admin_session"`
	AdminUser         string   `env:"SESSION_ADMIN_USER" envDefault:"admin"`
	SessionRoles      []string `env:"SESSION_ROLES" envSeparator:"," envDefault:"admin,reviewer"`
	ProtectedPrefixes []string `env:"PROTECTED_PREFIXES" envSeparator:"," envDefault:"/dashboard,/campaigns,/influencers,/chat,/profile"`
	ExcludePatterns   []string `env:"EXCLUDE_PATTERNS" envSeparator:"," envDefault:"/static/**,/_next/**,/images/**,/favicon.ico,/*.png,/*.svg,/manifest.json,/sw.js"`
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLevel(cfg.LogLevelName)
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return Config{}, fmt.Errorf("LOGIN_PATH must be absolute, got %q", cfg.LoginPath)
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
