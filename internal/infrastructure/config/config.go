package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Assets    AssetConfig
	State     StateConfig
	Export    ExportConfig
	Backend   BackendConfig
	View      ViewConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// AssetConfig holds view bundle asset configuration.
type AssetConfig struct {
	Root     string `envconfig:"ASSET_ROOT" default:"./webview"`
	Manifest string `envconfig:"ASSET_MANIFEST" default:""`
}

// StateConfig holds persisted state configuration.
type StateConfig struct {
	File string `envconfig:"STATE_FILE" default:"./data/state.json"`
}

// ExportConfig holds save-capability configuration.
type ExportConfig struct {
	Dir string `envconfig:"EXPORT_DIR" default:"./exports"`
}

// BackendConfig holds the monitored backend collaborator configuration.
type BackendConfig struct {
	Address        string `envconfig:"BACKEND_ADDR" default:""`
	TimeoutSeconds int    `envconfig:"BACKEND_TIMEOUT" default:"30"`
}

// ViewConfig holds the runtime values embedded into view payloads.
type ViewConfig struct {
	Theme           string `envconfig:"VIEW_THEME" default:"dark"`
	TimeDisplayMode string `envconfig:"VIEW_TIME_DISPLAY" default:"relative"`
	Mode            string `envconfig:"VIEW_MODE" default:"embedded"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7600",
			Host: "0.0.0.0",
		},
		Assets: AssetConfig{
			Root: "./webview",
		},
		State: StateConfig{
			File: "./data/state.json",
		},
		Export: ExportConfig{
			Dir: "./exports",
		},
		Backend: BackendConfig{
			TimeoutSeconds: 30,
		},
		View: ViewConfig{
			Theme:           "dark",
			TimeDisplayMode: "relative",
			Mode:            "embedded",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
