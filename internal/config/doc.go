// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for inferchat.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, validation, and hot reload
// via a file watcher.
//
// # Key Types
//
//   - Config: main configuration structure with all settings
//   - ServerConfig: inference server connection settings
//   - ChatConfig: conversation behavior (delivery mode, system prompt)
//   - Watcher: reloads configuration when the file on disk changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (INFERCHAT_*)
//   - ~/.inferchat/config.toml
//   - ~/.inferchat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	baseURL := cfg.Server.BaseURL
//	mode := cfg.Chat.DeliveryMode
package config
