// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// defaultDebounce coalesces rapid editor save events (write + chmod +
// rename) into a single reload.
const defaultDebounce = 250 * time.Millisecond

// ReloadFunc is invoked with the freshly loaded config after the file
// on disk changes.
type ReloadFunc func(*Config)

// Watcher watches the config directory and reloads the configuration
// when config.toml or config.json changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onReload ReloadFunc
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a config watcher. onReload may be nil, in which
// case the watcher only refreshes the global config.
func NewWatcher(onReload ReloadFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		watcher:  fsw,
		onReload: onReload,
		debounce: defaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching the config directory for changes.
func (w *Watcher) Watch() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	// Watch the directory, not the file: editors replace files by
	// rename, which drops a watch on the file itself.
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if due {
				w.reload()
			}
		}
	}
}

func (w *Watcher) reload() {
	if err := ReloadGlobal(); err != nil {
		// Keep the last good config on a bad edit.
		log.Printf("config reload failed: %v", err)
		return
	}
	log.Printf("config reloaded from disk")
	if w.onReload != nil {
		w.onReload(Global())
	}
}

func isConfigFile(path string) bool {
	base := filepath.Base(path)
	return base == "config.toml" || base == "config.json"
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
