// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saksham-jain177/inferchat/internal/config"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	})
}

func TestSetupWritesToFile(t *testing.T) {
	restoreLogger(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	cfg := config.Default()
	cfg.Logging.Path = path

	closer, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	log.Printf("hello from the test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Errorf("log file missing entry: %q", string(data))
	}
}

func TestSetupAppends(t *testing.T) {
	restoreLogger(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	cfg := config.Default()
	cfg.Logging.Path = path

	for _, line := range []string{"first", "second"} {
		closer, err := Setup(cfg)
		if err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		log.Printf("%s", line)
		closer.Close()
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("log file should contain both runs: %q", string(data))
	}
}

func TestSetupDisabled(t *testing.T) {
	restoreLogger(t)
	cfg := config.Default()
	cfg.Logging.Enabled = false

	closer, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if closer == nil {
		t.Fatal("Setup() returned nil closer")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
