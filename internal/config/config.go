// Package config provides configuration loading and validation for the server.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config represents the server configuration that can be loaded from a YAML file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	Port        int    `yaml:"port,omitempty"`
	Store       string `yaml:"store,omitempty"`        // memory or postgres
	DatabaseURL string `yaml:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `yaml:"redis_url,omitempty"`    // enables the shared rate limiter
	AutoMigrate bool   `yaml:"auto_migrate,omitempty"` // apply the schema on startup

	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port:  8080,
		Store: StoreMemory,
	}
}

// LoadConfig loads configuration from a YAML file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from DATABASE_URL, REDIS_URL and PORT.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}
	if cfg.DatabaseURL != "" {
		cfg.Store = StorePostgres
	}
	if port := os.Getenv("PORT"); port != "" {
		_, _ = fmt.Sscanf(port, "%d", &cfg.Port)
	}
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	default:
		return fmt.Errorf("config error: unknown store %q (want %s or %s)", c.Store, StoreMemory, StorePostgres)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Values already set on c win.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Store == "" {
		result.Store = defaults.Store
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}

	// Bool fields: cannot distinguish unset from false, so true wins
	result.AutoMigrate = result.AutoMigrate || defaults.AutoMigrate

	return result
}
