package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendLocal = "local"
	BackendSFTP  = "sftp"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Logging LogConfig
	FS      FSConfig
	Watch   WatchConfig
	Command CommandConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	StaticDir   string   `envconfig:"STATIC_DIR" default:"."`
	DataDir     string   `envconfig:"DATA_DIR" default:"data"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// FSConfig selects the filesystem the file operations run against.
type FSConfig struct {
	Backend string `envconfig:"FS_BACKEND" default:"local"`

	// Remote workspace, only read when Backend is "sftp".
	SFTPAddr       string `envconfig:"SFTP_ADDR"`
	SFTPUser       string `envconfig:"SFTP_USER"`
	SFTPPassword   string `envconfig:"SFTP_PASSWORD"`
	SFTPKnownHosts string `envconfig:"SFTP_KNOWN_HOSTS"`
}

// WatchConfig holds change-notification configuration.
type WatchConfig struct {
	BufferSize int           `envconfig:"WATCH_BUFFER_SIZE" default:"256"`
	Heartbeat  time.Duration `envconfig:"WATCH_HEARTBEAT" default:"15s"`
	Recursive  bool          `envconfig:"WATCH_RECURSIVE" default:"true"`
	Ignore     []string      `envconfig:"WATCH_IGNORE" default:"**/.git,**/node_modules"`
}

// CommandConfig holds command passthrough configuration.
type CommandConfig struct {
	Enabled bool `envconfig:"COMMAND_ENABLED" default:"true"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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
			Port:        "8000",
			Host:        "0.0.0.0",
			StaticDir:   ".",
			DataDir:     "data",
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		FS: FSConfig{
			Backend: BackendLocal,
		},
		Watch: WatchConfig{
			BufferSize: 256,
			Heartbeat:  15 * time.Second,
			Recursive:  true,
			Ignore:     []string{"**/.git", "**/node_modules"},
		},
		Command: CommandConfig{
			Enabled: true,
		},
	}
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	switch c.FS.Backend {
	case BackendLocal:
	case BackendSFTP:
		if c.FS.SFTPAddr == "" || c.FS.SFTPUser == "" {
			return fmt.Errorf("sftp backend requires SFTP_ADDR and SFTP_USER")
		}
	default:
		return fmt.Errorf("unknown filesystem backend %q", c.FS.Backend)
	}

	if c.Watch.BufferSize <= 0 {
		return fmt.Errorf("WATCH_BUFFER_SIZE must be positive, got %d", c.Watch.BufferSize)
	}

	for i, pattern := range c.Watch.Ignore {
		pattern = strings.TrimSpace(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid watch ignore pattern %q", pattern)
		}
		c.Watch.Ignore[i] = pattern
	}
	return nil
}
