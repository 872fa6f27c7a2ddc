// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging routes the standard library logger to a file under
// the inferchat config directory. Writing log output to the terminal
// would corrupt the TUI, so everything that calls log.Printf lands in
// ~/.inferchat/inferchat.log instead.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/saksham-jain177/inferchat/internal/config"
)

const defaultLogName = "inferchat.log"

// Setup redirects the standard logger according to cfg.Logging.
// When logging is disabled, output is discarded. The returned closer
// must be called on shutdown; it is never nil.
func Setup(cfg *config.Config) (io.Closer, error) {
	if !cfg.Logging.Enabled {
		log.SetOutput(io.Discard)
		return nopCloser{}, nil
	}

	path := cfg.Logging.Path
	if path == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return nopCloser{}, err
		}
		path = filepath.Join(dir, defaultLogName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
