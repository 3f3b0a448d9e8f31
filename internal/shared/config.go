package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Playlist PlaylistConfig `toml:"playlist"`
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Log      LogConfig      `toml:"log"`
}

// PlaylistConfig contains the defaults for a new mixtape.
type PlaylistConfig struct {
	Title           string `toml:"title"`
	Mode            string `toml:"mode"`
	CapacitySeconds int    `toml:"capacity_seconds"`
}

// StoreConfig selects the persistence mirror.
type StoreConfig struct {
	Driver    string `toml:"driver"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// DatabaseConfig contains SQLite connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PostgresConfig contains the Postgres connection string.
type PostgresConfig struct {
	DSN string `toml:"dsn"`
}

// RedisConfig contains settings for change notifications. An empty Addr disables them.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Channel  string `toml:"channel"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// YouTubeConfig contains YouTube Data API settings used by the catalog.
type YouTubeConfig struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads a .env file when one exists and overlays environment variables onto the config.
//
// Recognized variables: YOUTUBE_API_KEY, MIXTAPE_POSTGRES_DSN, MIXTAPE_REDIS_ADDR,
// MIXTAPE_STORE_DRIVER, MIXTAPE_LOG_LEVEL, MIXTAPE_PORT.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv("MIXTAPE_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("MIXTAPE_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("MIXTAPE_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("MIXTAPE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v, err := strconv.Atoi(os.Getenv("MIXTAPE_PORT")); err == nil && v > 0 {
		c.Server.Port = v
	}
}

// Validate checks the config for values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Playlist.Mode {
	case "cd", "cassette", "focus":
	default:
		return fmt.Errorf("%w: unknown playlist mode %q", ErrInvalidConfig, c.Playlist.Mode)
	}

	if c.Playlist.CapacitySeconds < 0 {
		return fmt.Errorf("%w: capacity_seconds must not be negative", ErrInvalidConfig)
	}

	switch c.Store.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("%w: postgres driver requires a dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Store.TimeoutMS < 0 {
		return fmt.Errorf("%w: timeout_ms must not be negative", ErrInvalidConfig)
	}

	return nil
}

// StoreTimeout returns the per-call timeout for mirror operations; zero means no timeout.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutMS) * time.Millisecond
}

// ServerAddr returns host:port for the HTTP server.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
