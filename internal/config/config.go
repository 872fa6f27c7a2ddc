// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for inferchat.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.inferchat/config.toml
//   - ~/.inferchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/saksham-jain177/inferchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete inferchat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Server connection configuration
	Server ServerConfig `toml:"server" json:"server"`

	// Chat behavior configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// ServerConfig contains the inference server connection settings.
type ServerConfig struct {
	// BaseURL is the address of the inference server
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the timeout for structured requests in seconds.
	// Streaming requests have no timeout; they are bound to their
	// context.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// HealthPollSecs is the telemetry poll cadence in seconds
	HealthPollSecs int `toml:"health_poll_secs" json:"health_poll_secs"`
}

// ChatConfig contains conversation behavior settings.
type ChatConfig struct {
	// DeliveryMode selects how answers arrive: "stream" for
	// incremental tokens, "structured" for one complete payload with
	// routing metadata
	DeliveryMode string `toml:"delivery_mode" json:"delivery_mode"`
	// SystemPrompt seeds every new conversation
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowStats displays per-turn generation statistics
	ShowStats bool `toml:"show_stats" json:"show_stats"`
	// ShowModeBadges displays routing mode badges on assistant turns
	ShowModeBadges bool `toml:"show_mode_badges" json:"show_mode_badges"`
	// Markdown renders assistant turns as markdown
	Markdown bool `toml:"markdown" json:"markdown"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// LoggingConfig contains debug log settings.
type LoggingConfig struct {
	// Enabled turns file logging on
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the log file location (empty = ~/.inferchat/inferchat.log)
	Path string `toml:"path" json:"path"`
}

// Delivery mode values accepted in chat.delivery_mode.
const (
	DeliveryStream     = "stream"
	DeliveryStructured = "structured"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:        "http://127.0.0.1:8000",
			TimeoutSecs:    60,
			HealthPollSecs: 3,
		},

		Chat: ChatConfig{
			DeliveryMode: DeliveryStream,
			SystemPrompt: "You are a helpful assistant.",
		},

		UI: UIConfig{
			Theme:          "dark",
			ShowStats:      true,
			ShowModeBadges: true,
			Markdown:       true,
			CompactMode:    false,
		},

		Logging: LoggingConfig{
			Enabled: true,
			Path:    "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the inferchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".inferchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finishLoad applies overrides, migration, defaults, and validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with owner-only
// permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	fmt.Fprintln(file, "# inferchat configuration file")
	fmt.Fprintln(file, "# Generated by inferchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file. The write is atomic
// so a crash mid-save cannot leave a truncated config behind.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server URL must parse and carry a scheme
	if c.Server.BaseURL != "" {
		parsed, err := url.Parse(c.Server.BaseURL)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "server.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "server.base_url",
				Message: fmt.Sprintf("scheme must be http or https, got '%s'", parsed.Scheme),
			})
		}
	}

	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Server.TimeoutSecs),
		})
	}

	if c.Server.HealthPollSecs < 1 || c.Server.HealthPollSecs > 60 {
		errs = append(errs, ValidationError{
			Field:   "server.health_poll_secs",
			Message: fmt.Sprintf("must be 1-60, got %d", c.Server.HealthPollSecs),
		})
	}

	// Delivery mode
	validModes := map[string]bool{DeliveryStream: true, DeliveryStructured: true}
	if !validModes[strings.ToLower(c.Chat.DeliveryMode)] {
		errs = append(errs, ValidationError{
			Field:   "chat.delivery_mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: stream, structured", c.Chat.DeliveryMode),
		})
	}

	// UI theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value
// configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.HealthPollSecs == 0 {
		c.Server.HealthPollSecs = defaults.Server.HealthPollSecs
	}

	if c.Chat.DeliveryMode == "" {
		c.Chat.DeliveryMode = defaults.Chat.DeliveryMode
	}
	if c.Chat.SystemPrompt == "" {
		c.Chat.SystemPrompt = defaults.Chat.SystemPrompt
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() error {
	// Older builds called structured mode "adaptive" and stream mode
	// "sse"; normalize both.
	switch strings.ToLower(c.Chat.DeliveryMode) {
	case "adaptive":
		c.Chat.DeliveryMode = DeliveryStructured
	case "sse":
		c.Chat.DeliveryMode = DeliveryStream
	}

	// Trailing slashes on the server URL break path joins.
	c.Server.BaseURL = strings.TrimSuffix(c.Server.BaseURL, "/")

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the
// config.
//
// Supported environment variables:
//   - INFERCHAT_SERVER_URL: overrides server.base_url
//   - INFERCHAT_TIMEOUT_SECS: overrides server.timeout_secs
//   - INFERCHAT_MODE: overrides chat.delivery_mode
//   - INFERCHAT_SYSTEM_PROMPT: overrides chat.system_prompt
//   - INFERCHAT_THEME: overrides ui.theme
//   - INFERCHAT_LOG: set to "0" or "false" to disable file logging
func (c *Config) ApplyEnvOverrides() {
	if serverURL := os.Getenv("INFERCHAT_SERVER_URL"); serverURL != "" {
		c.Server.BaseURL = serverURL
	}

	if timeout := os.Getenv("INFERCHAT_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Server.TimeoutSecs = secs
		}
	}

	if mode := os.Getenv("INFERCHAT_MODE"); mode != "" {
		c.Chat.DeliveryMode = mode
	}

	if prompt := os.Getenv("INFERCHAT_SYSTEM_PROMPT"); prompt != "" {
		c.Chat.SystemPrompt = prompt
	}

	if theme := os.Getenv("INFERCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if logEnv := os.Getenv("INFERCHAT_LOG"); logEnv != "" {
		c.Logging.Enabled = logEnv != "0" && strings.ToLower(logEnv) != "false"
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g., "server.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, return the value
		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation
// (e.g., "chat.delivery_mode").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, set the value
		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with
// type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"server.base_url",
		"server.timeout_secs",
		"server.health_poll_secs",
		"chat.delivery_mode",
		"chat.system_prompt",
		"ui.theme",
		"ui.show_stats",
		"ui.show_mode_badges",
		"ui.markdown",
		"ui.compact_mode",
		"logging.enabled",
		"logging.path",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
