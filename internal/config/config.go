// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for mentor.
//
// Configuration lives at ~/.mentor/config.toml with sensible defaults,
// environment variable overrides, and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/mentor-tui/internal/gemini"
	"github.com/jeranaias/mentor-tui/internal/server"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete mentor configuration.
type Config struct {
	Version string `toml:"version"`

	API     APIConfig     `toml:"api"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
}

// APIConfig contains Generative Language API settings.
type APIConfig struct {
	// Key is the API key. Prefer the MENTOR_API_KEY or GEMINI_API_KEY
	// environment variables over storing it here.
	Key string `toml:"key"`
	// BaseURL is the API base URL.
	BaseURL string `toml:"base_url"`
	// ChatModel is the model used for conversation and code analysis.
	ChatModel string `toml:"chat_model"`
	// FastModel is the model used for structured study tools.
	FastModel string `toml:"fast_model"`
	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ServerConfig contains proxy server settings.
type ServerConfig struct {
	// Port is the local proxy listen port.
	Port int `toml:"port"`
	// ProxyURL is where a keyless client sends its requests. Empty means
	// direct API access with the configured key.
	ProxyURL string `toml:"proxy_url"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// DataDir is the root directory for mentor data. Default: ~/.mentor
	DataDir string `toml:"data_dir"`
	// DatabaseFile is the state database filename inside DataDir.
	DatabaseFile string `toml:"database_file"`
	// WatchDir is the auto-import drop directory inside DataDir.
	WatchDir string `toml:"watch_dir"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Theme is the UI theme: "light", "dark", "system"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout.
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:     gemini.DefaultBaseURL,
			ChatModel:   gemini.ModelChat,
			FastModel:   gemini.ModelFast,
			TimeoutSecs: 60,
		},

		Server: ServerConfig{
			Port: server.DefaultPort,
		},

		Storage: StorageConfig{
			DatabaseFile: "mentor.db",
			WatchDir:     "inbox",
		},

		UI: UIConfig{
			Theme: "light",
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// ConfigDir returns the mentor configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".mentor"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DatabasePath returns the absolute path of the state database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.DatabaseFile)
}

// WatchPath returns the absolute path of the auto-import directory.
func (c *Config) WatchPath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.WatchDir)
}

// ensureSecurePermissions fixes permissions on the config file.
// SECURITY: The config can hold an API key, so it must be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from ~/.mentor/config.toml, falling back to
// defaults when the file is missing. Environment overrides apply last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies defaults and validates.
func (c *Config) finish() error {
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the configuration to ~/.mentor/config.toml.
// SECURITY: Written with 0600 permissions, owner read/write only.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to the given path.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# mentor configuration file")
	fmt.Fprintln(file, "# Generated by mentor - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND ENVIRONMENT OVERRIDES
// =============================================================================

// SetDefaults fills in any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.ChatModel == "" {
		c.API.ChatModel = defaults.API.ChatModel
	}
	if c.API.FastModel == "" {
		c.API.FastModel = defaults.API.FastModel
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Storage.DataDir == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Storage.DataDir = dir
		}
	}
	if c.Storage.DatabaseFile == "" {
		c.Storage.DatabaseFile = defaults.Storage.DatabaseFile
	}
	if c.Storage.WatchDir == "" {
		c.Storage.WatchDir = defaults.Storage.WatchDir
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - MENTOR_API_KEY: overrides api.key
//   - GEMINI_API_KEY: fallback for api.key
//   - MENTOR_MODEL: overrides api.chat_model
//   - MENTOR_PROXY_URL: overrides server.proxy_url
//   - MENTOR_PORT: overrides server.port
//   - MENTOR_DATA_DIR: overrides storage.data_dir
//   - MENTOR_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("MENTOR_API_KEY"); key != "" {
		c.API.Key = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.API.Key == "" {
		c.API.Key = key
	}

	if model := os.Getenv("MENTOR_MODEL"); model != "" {
		c.API.ChatModel = model
	}
	if proxy := os.Getenv("MENTOR_PROXY_URL"); proxy != "" {
		c.Server.ProxyURL = proxy
	}
	if port := os.Getenv("MENTOR_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dir := os.Getenv("MENTOR_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if theme := os.Getenv("MENTOR_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.API.BaseURL),
		})
	}

	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be 1-600 seconds, got %d", c.API.TimeoutSecs),
		})
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("must be 1-65535, got %d", c.Server.Port),
		})
	}

	if c.Server.ProxyURL != "" {
		if u, err := url.Parse(c.Server.ProxyURL); err != nil || u.Scheme == "" {
			errs = append(errs, ValidationError{
				Field:   "server.proxy_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.ProxyURL),
			})
		}
	}

	validThemes := map[string]bool{"light": true, "dark": true, "system": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: light, dark, system", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// String returns the config as a string for debugging.
// SECURITY: The API key is redacted so it never lands in logs.
func (c *Config) String() string {
	safe := *c
	if safe.API.Key != "" {
		safe.API.Key = "[REDACTED]"
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(safe); err != nil {
		return fmt.Sprintf("config{version=%s}", c.Version)
	}
	return sb.String()
}
