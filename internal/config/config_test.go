// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.API.ChatModel == "" || cfg.API.FastModel == "" {
		t.Error("default models must be set")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q, want light", cfg.UI.Theme)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[api]
key = "test-key"
timeout_secs = 30

[ui]
theme = "dark"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.API.Key != "test-key" {
		t.Errorf("key = %q", cfg.API.Key)
	}
	if cfg.API.TimeoutSecs != 30 {
		t.Errorf("timeout = %d", cfg.API.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	// Unset fields fall back to defaults.
	if cfg.API.BaseURL == "" || cfg.Server.Port == 0 {
		t.Error("defaults not applied to unset fields")
	}
	if cfg.Storage.DatabaseFile != "mentor.db" {
		t.Errorf("database file = %q", cfg.Storage.DatabaseFile)
	}
}

func TestLoadFromPath_FixesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`[ui]`+"\n"+`theme = "light"`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MENTOR_API_KEY", "env-key")
	t.Setenv("MENTOR_THEME", "dark")
	t.Setenv("MENTOR_PORT", "9000")
	t.Setenv("GEMINI_API_KEY", "ignored-fallback")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Key != "env-key" {
		t.Errorf("key = %q, MENTOR_API_KEY should win over GEMINI_API_KEY", cfg.API.Key)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestEnvOverrides_GeminiKeyFallback(t *testing.T) {
	t.Setenv("MENTOR_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "fallback-key")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Key != "fallback-key" {
		t.Errorf("key = %q, want GEMINI_API_KEY fallback", cfg.API.Key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad timeout", func(c *Config) { c.API.TimeoutSecs = 0 }, "api.timeout_secs"},
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, "api.base_url"},
		{"bad proxy url", func(c *Config) { c.Server.ProxyURL = "::bad" }, "server.proxy_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.Key = "saved-key"
	cfg.UI.Theme = "dark"
	cfg.Storage.DataDir = "/tmp/mentor-test"

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.API.Key != "saved-key" || loaded.UI.Theme != "dark" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestStringRedactsKey(t *testing.T) {
	cfg := Default()
	cfg.API.Key = "super-secret"

	s := cfg.String()
	if strings.Contains(s, "super-secret") {
		t.Error("String() leaked the API key")
	}
	if !strings.Contains(s, "[REDACTED]") {
		t.Error("String() should mark the key as redacted")
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/data/mentor"
	cfg.SetDefaults()

	if got := cfg.DatabasePath(); got != filepath.Join("/data/mentor", "mentor.db") {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := cfg.WatchPath(); got != filepath.Join("/data/mentor", "inbox") {
		t.Errorf("WatchPath = %q", got)
	}
}
