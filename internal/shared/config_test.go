package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mixtape.db" {
			t.Errorf("expected database path ./mixtape.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Playlist.Mode != "cd" {
			t.Errorf("expected mode cd, got %s", config.Playlist.Mode)
		}
		if config.Store.Driver != "sqlite" {
			t.Errorf("expected sqlite driver, got %s", config.Store.Driver)
		}
		if config.StoreTimeout() != 5*time.Second {
			t.Errorf("expected 5s store timeout, got %v", config.StoreTimeout())
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[playlist]
title = "Road Trip"
mode = "cassette"

[store]
driver = "postgres"
timeout_ms = 250

[postgres]
dsn = "postgres://localhost/mixtape"

[server]
host = "0.0.0.0"
port = 8080
`

		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Playlist.Title != "Road Trip" {
			t.Errorf("expected title Road Trip, got %s", config.Playlist.Title)
		}
		if config.Playlist.Mode != "cassette" {
			t.Errorf("expected mode cassette, got %s", config.Playlist.Mode)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.StoreTimeout() != 250*time.Millisecond {
			t.Errorf("expected 250ms timeout, got %v", config.StoreTimeout())
		}
		if config.Database.Path != "./mixtape.db" {
			t.Errorf("unset keys should keep defaults, got database path %s", config.Database.Path)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(c *Config)
		}{
			{name: "unknown mode", mutate: func(c *Config) { c.Playlist.Mode = "minidisc" }},
			{name: "negative capacity", mutate: func(c *Config) { c.Playlist.CapacitySeconds = -1 }},
			{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }},
			{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = "postgres"; c.Postgres.DSN = "" }},
			{name: "negative timeout", mutate: func(c *Config) { c.Store.TimeoutMS = -5 }},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)
				err := config.Validate()
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("YOUTUBE_API_KEY", "key-from-env")
		t.Setenv("MIXTAPE_REDIS_ADDR", "localhost:6379")
		t.Setenv("MIXTAPE_PORT", "4000")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.YouTube.APIKey != "key-from-env" {
			t.Errorf("expected api key from env, got %s", config.YouTube.APIKey)
		}
		if config.Redis.Addr != "localhost:6379" {
			t.Errorf("expected redis addr from env, got %s", config.Redis.Addr)
		}
		if config.ServerAddr() != "127.0.0.1:4000" {
			t.Errorf("expected 127.0.0.1:4000, got %s", config.ServerAddr())
		}
	})
}
