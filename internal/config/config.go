package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	defaultDatabaseURL = "postgres://localhost:5432/hangout?sslmode=disable"
)

type Config struct {
	Storage        string `env:"STORAGE" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`

	HTTPEnabled bool   `env:"HTTP_ENABLED" envDefault:"true"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret   string `env:"JWT_SECRET"`

	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	Locale      string        `env:"LOCALE" envDefault:"en"`
	LinkBaseURL string        `env:"LINK_BASE_URL" envDefault:"http://localhost:8080"`
	GuestTTL    time.Duration `env:"GUEST_TTL" envDefault:"720h"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	OutboxBatch   int           `env:"OUTBOX_BATCH" envDefault:"50"`
	OutboxRetries int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file, decodes the environment and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI).
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse decodes cfg from the process environment, or from environ when it is
// non-nil, then validates it.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DiscordEnabled reports whether the Discord bot should connect.
func (c *Config) DiscordEnabled() bool {
	return strings.TrimSpace(c.DiscordToken) != ""
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			c.DatabaseURL = defaultDatabaseURL
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	default:
		return fmt.Errorf("config: STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage)
	}

	if c.HTTPEnabled && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("config: JWT_SECRET is required when HTTP_ENABLED is set")
	}

	for _, r := range c.DiscordGuildID {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: DISCORD_GUILD_ID must be a Discord guild ID (digits only)")
		}
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: invalid LOCALE %q: %w", c.Locale, err)
	}
	if _, err := url.ParseRequestURI(c.LinkBaseURL); err != nil {
		return fmt.Errorf("config: invalid LINK_BASE_URL %q: %w", c.LinkBaseURL, err)
	}
	if c.GuestTTL <= 0 {
		return fmt.Errorf("config: GUEST_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: SWEEP_INTERVAL must be positive")
	}
	if c.OutboxBatch <= 0 {
		return fmt.Errorf("config: OUTBOX_BATCH must be positive")
	}
	if c.OutboxRetries <= 0 {
		return fmt.Errorf("config: OUTBOX_MAX_ATTEMPTS must be positive")
	}
	return nil
}
