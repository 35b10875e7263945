package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse(map[string]string{"JWT_SECRET": "s3cret"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage != StoragePostgres || cfg.DatabaseURL != defaultDatabaseURL {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.GuestTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day guest TTL, got %s", cfg.GuestTTL)
	}
	if cfg.SweepInterval != time.Minute || cfg.OutboxBatch != 50 || cfg.OutboxRetries != 5 {
		t.Fatalf("unexpected sweep defaults: %+v", cfg)
	}
	if !cfg.HTTPEnabled || cfg.DiscordEnabled() {
		t.Fatalf("expected HTTP on and Discord off: %+v", cfg)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		environ map[string]string
		want    string
	}{
		{"unknown storage", map[string]string{"STORAGE": "sqlite", "JWT_SECRET": "x"}, "STORAGE"},
		{"bad database url", map[string]string{"DATABASE_URL": "localhost", "JWT_SECRET": "x"}, "DATABASE_URL"},
		{"http without secret", map[string]string{"STORAGE": "memory"}, "JWT_SECRET"},
		{"guild not numeric", map[string]string{"STORAGE": "memory", "HTTP_ENABLED": "false", "DISCORD_GUILD_ID": "abc"}, "DISCORD_GUILD_ID"},
		{"bad locale", map[string]string{"STORAGE": "memory", "HTTP_ENABLED": "false", "LOCALE": "!!"}, "LOCALE"},
		{"zero ttl", map[string]string{"STORAGE": "memory", "HTTP_ENABLED": "false", "GUEST_TTL": "0s"}, "GUEST_TTL"},
		{"bad duration", map[string]string{"STORAGE": "memory", "SWEEP_INTERVAL": "soon"}, "parse env"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.environ)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}

func TestParseMemoryStorageWithoutHTTP(t *testing.T) {
	cfg, err := Parse(map[string]string{"STORAGE": "memory", "HTTP_ENABLED": "false", "DISCORD_TOKEN": "tok", "LOCALE": "fr"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.HTTPEnabled || !cfg.DiscordEnabled() || cfg.DatabaseURL != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
