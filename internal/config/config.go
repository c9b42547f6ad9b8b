// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// User settings
	User UserConfig `toml:"user"`

	// UI settings
	UI UIConfig `toml:"ui"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	// URL is the base URL of the REST API.
	URL string `toml:"url"`
	// SocketURL is the push-channel endpoint. Empty derives it from URL.
	SocketURL string `toml:"socket_url"`
	// TimeoutSecs is the REST request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UserConfig identifies the local user.
type UserConfig struct {
	// Username is attached to every outbound message.
	Username string `toml:"username"`
	// DataDir holds local state such as preferences. Empty means
	// the directory next to the config file.
	DataDir string `toml:"data_dir"`
}

// UIConfig tunes the interface.
type UIConfig struct {
	// StatusPollMS is the indexing-status poll interval in milliseconds.
	StatusPollMS int `toml:"status_poll_ms"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:         "http://127.0.0.1:5000",
			TimeoutSecs: 30,
		},
		User: UserConfig{
			Username: "anonymous",
		},
		UI: UIConfig{
			StatusPollMS: 500,
		},
	}
}

// SetDefaults fills zero-valued fields with the built-in defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Server.URL == "" {
		c.Server.URL = def.Server.URL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.User.Username == "" {
		c.User.Username = def.User.Username
	}
	if c.UI.StatusPollMS <= 0 {
		c.UI.StatusPollMS = def.UI.StatusPollMS
	}
}

// Timeout returns the REST request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// StatusPollInterval returns the indexing-status poll interval.
func (c *Config) StatusPollInterval() time.Duration {
	return time.Duration(c.UI.StatusPollMS) * time.Millisecond
}

// SocketEndpoint returns the push-channel URL, derived from the server
// URL when not set explicitly.
func (c *Config) SocketEndpoint() string {
	if c.Server.SocketURL != "" {
		return c.Server.SocketURL
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return c.Server.URL
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/socket"
	return u.String()
}

// DataDir returns the local state directory, derived from the config
// directory when not set explicitly.
func (c *Config) DataDir() (string, error) {
	if c.User.DataDir != "" {
		return c.User.DataDir, nil
	}
	return Dir()
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the configuration directory (~/.ausma).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ausma"), nil
}

// Path returns the configuration file path (~/.ausma/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir creates the configuration directory if it does not exist.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, fills defaults, and applies
// environment overrides. A missing file is not an error: defaults and
// overrides still apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load with an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.SetDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies AUSMA_* environment variables on top of the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AUSMA_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("AUSMA_SOCKET_URL"); v != "" {
		c.Server.SocketURL = v
	}
	if v := os.Getenv("AUSMA_USERNAME"); v != "" {
		c.User.Username = v
	}
	if v := os.Getenv("AUSMA_DATA_DIR"); v != "" {
		c.User.DataDir = v
	}
	if v := os.Getenv("AUSMA_STATUS_POLL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.UI.StatusPollMS = ms
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.Server.URL)
	}
	if c.Server.SocketURL != "" {
		su, err := url.Parse(c.Server.SocketURL)
		if err != nil || su.Scheme == "" || su.Host == "" {
			return fmt.Errorf("invalid socket url %q", c.Server.SocketURL)
		}
	}
	if c.Server.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout_secs must be positive, got %d", c.Server.TimeoutSecs)
	}
	if c.UI.StatusPollMS <= 0 {
		return fmt.Errorf("status_poll_ms must be positive, got %d", c.UI.StatusPollMS)
	}
	return nil
}
