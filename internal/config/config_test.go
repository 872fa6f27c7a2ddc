// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"sync"
	"testing"
)

// TestConfig_Default tests that Default() returns a valid config.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}
	if cfg.Server.BaseURL == "" {
		t.Error("Default config should have a server URL")
	}
	if cfg.Chat.DeliveryMode != DeliveryStream {
		t.Errorf("Expected default delivery mode 'stream', got '%s'", cfg.Chat.DeliveryMode)
	}
	if cfg.Server.HealthPollSecs != 3 {
		t.Errorf("Expected default health poll of 3s, got %d", cfg.Server.HealthPollSecs)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid delivery mode",
			mutate:  func(c *Config) { c.Chat.DeliveryMode = "telepathy" },
			wantErr: true,
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.UI.Theme = "sepia" },
			wantErr: true,
		},
		{
			name:    "invalid URL scheme",
			mutate:  func(c *Config) { c.Server.BaseURL = "ftp://example.com" },
			wantErr: true,
		},
		{
			name:    "timeout zero",
			mutate:  func(c *Config) { c.Server.TimeoutSecs = 0 },
			wantErr: true,
		},
		{
			name:    "timeout above maximum",
			mutate:  func(c *Config) { c.Server.TimeoutSecs = 601 },
			wantErr: true,
		},
		{
			name:    "poll interval zero",
			mutate:  func(c *Config) { c.Server.HealthPollSecs = 0 },
			wantErr: true,
		},
		{
			name:    "poll interval at maximum",
			mutate:  func(c *Config) { c.Server.HealthPollSecs = 60 },
			wantErr: false,
		},
		{
			name:    "structured mode is valid",
			mutate:  func(c *Config) { c.Chat.DeliveryMode = DeliveryStructured },
			wantErr: false,
		},
		{
			name:    "https URL is valid",
			mutate:  func(c *Config) { c.Server.BaseURL = "https://infer.example.com" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_Migrate tests migration of legacy values.
func TestConfig_Migrate(t *testing.T) {
	cfg := Default()
	cfg.Chat.DeliveryMode = "adaptive"
	cfg.Server.BaseURL = "http://localhost:8000/"

	if err := cfg.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if cfg.Chat.DeliveryMode != DeliveryStructured {
		t.Errorf("legacy 'adaptive' should migrate to 'structured', got '%s'", cfg.Chat.DeliveryMode)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("trailing slash should be stripped, got '%s'", cfg.Server.BaseURL)
	}

	cfg.Chat.DeliveryMode = "sse"
	_ = cfg.Migrate()
	if cfg.Chat.DeliveryMode != DeliveryStream {
		t.Errorf("legacy 'sse' should migrate to 'stream', got '%s'", cfg.Chat.DeliveryMode)
	}
}

// TestConfig_EnvOverrides tests environment variable overrides.
func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("INFERCHAT_SERVER_URL", "http://10.0.0.5:9000")
	t.Setenv("INFERCHAT_MODE", "structured")
	t.Setenv("INFERCHAT_TIMEOUT_SECS", "120")
	t.Setenv("INFERCHAT_THEME", "light")
	t.Setenv("INFERCHAT_LOG", "false")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("server URL override not applied: %s", cfg.Server.BaseURL)
	}
	if cfg.Chat.DeliveryMode != "structured" {
		t.Errorf("mode override not applied: %s", cfg.Chat.DeliveryMode)
	}
	if cfg.Server.TimeoutSecs != 120 {
		t.Errorf("timeout override not applied: %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme override not applied: %s", cfg.UI.Theme)
	}
	if cfg.Logging.Enabled {
		t.Error("INFERCHAT_LOG=false should disable logging")
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("chat.delivery_mode")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != DeliveryStream {
		t.Errorf("Get('chat.delivery_mode') = %v, want 'stream'", val)
	}

	if err := cfg.Set("chat.delivery_mode", "structured"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("chat.delivery_mode")
	if val != "structured" {
		t.Errorf("Get after Set = %v, want 'structured'", val)
	}

	// String-to-int conversion
	if err := cfg.Set("server.timeout_secs", "90"); err != nil {
		t.Fatalf("Set() int error = %v", err)
	}
	if cfg.Server.TimeoutSecs != 90 {
		t.Errorf("timeout = %d, want 90", cfg.Server.TimeoutSecs)
	}

	// String-to-bool conversion
	if err := cfg.Set("ui.show_stats", "false"); err != nil {
		t.Fatalf("Set() bool error = %v", err)
	}
	if cfg.UI.ShowStats {
		t.Error("ui.show_stats should be false after Set")
	}

	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
	if err := cfg.Set("server.no_such_field", "x"); err == nil {
		t.Error("Set() with invalid key should return error")
	}
}

// TestConfig_SaveLoadRoundTrip tests that a saved TOML config loads
// back with the same values.
func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.Server.BaseURL = "http://10.1.2.3:8000"
	cfg.Chat.DeliveryMode = DeliveryStructured
	cfg.Chat.SystemPrompt = "Be terse."

	path := filepath.Join(home, ".inferchat", "config.toml")
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Server.BaseURL != "http://10.1.2.3:8000" {
		t.Errorf("round trip lost server URL: %s", loaded.Server.BaseURL)
	}
	if loaded.Chat.DeliveryMode != DeliveryStructured {
		t.Errorf("round trip lost delivery mode: %s", loaded.Chat.DeliveryMode)
	}
	if loaded.Chat.SystemPrompt != "Be terse." {
		t.Errorf("round trip lost system prompt: %q", loaded.Chat.SystemPrompt)
	}
}

// TestConfig_SaveLoadJSON tests the JSON fallback format.
func TestConfig_SaveLoadJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.UI.Theme = "light"

	path := filepath.Join(home, ".inferchat", "config.json")
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("JSON round trip lost theme: %s", loaded.UI.Theme)
	}
}

// TestConfig_LoadMissingFileUsesDefaults tests fallback to defaults.
func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Server.BaseURL != Default().Server.BaseURL {
		t.Errorf("missing config should yield defaults, got %s", cfg.Server.BaseURL)
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	original.Version = "original"

	clone := original.Clone()
	clone.Version = "cloned"

	if original.Version != "original" {
		t.Error("Clone should create an independent copy")
	}
	if clone.Version != "cloned" {
		t.Error("Clone version should be modified")
	}
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and
// ReloadGlobal() can be safely called concurrently.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global.
func TestConfig_ConcurrentReload(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	ResetGlobalForTesting()

	_ = Global()

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}

	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal replaces the
// existing global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	ResetGlobalForTesting()

	_ = Global()

	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)

	result := Global()
	if result.Version != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", result.Version)
	}
}
