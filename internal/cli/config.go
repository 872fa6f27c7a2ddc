// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handler.
//
// Handles "inferchat config" with the show/get/set/path subcommands.
// Keys use dot notation matching the config file structure, e.g.
// server.base_url or chat.delivery_mode.
package cli

import (
	"fmt"
	"os"

	"github.com/saksham-jain177/inferchat/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	if err := handleConfigCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

func handleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "get":
		return configGet(args)
	case "set":
		return configSet(args)
	case "path":
		return configPath()
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "inferchat config [show|get|set|path]",
		}
	}
}

func configShow(args Args) error {
	cfg := config.Global()

	if args.JSON {
		return NewJSONResponse("config", cfg).Print()
	}

	fmt.Println(TitleStyle.Render("Configuration"))
	for _, key := range config.GetAllKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("%s %v\n", LabelStyle.Render(key), ValueStyle.Render(fmt.Sprintf("%v", value)))
	}

	path, err := config.ConfigPathTOML()
	if err == nil {
		fmt.Println()
		fmt.Println(DimStyle.Render("File: " + path))
	}
	return nil
}

func configGet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "inferchat config get chat.delivery_mode")
	}

	value, err := config.Global().Get(args.ConfigKey)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]any{args.ConfigKey: value}).Print()
	}
	fmt.Printf("%v\n", value)
	return nil
}

func configSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", "inferchat config set chat.delivery_mode structured")
	}

	cfg := config.Global()
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return WrapError(err, "rejected invalid configuration")
	}
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "failed to save configuration")
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), args.ConfigKey, args.ConfigVal)
	return nil
}

func configPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
