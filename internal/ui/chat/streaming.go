// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

const (
	// defaultBatchSize is how many tokens accumulate before a flush is due.
	defaultBatchSize = 15

	// defaultMaxFPS caps how often the view re-renders during streaming.
	defaultMaxFPS = 30
)

// StreamingBuffer batches incoming tokens so the view re-renders at a
// bounded rate instead of once per token. The decode goroutine calls
// Write; the update loop calls Flush on each stream tick.
type StreamingBuffer struct {
	mu        sync.Mutex
	buffer    strings.Builder
	count     int
	lastFlush time.Time

	batchSize    int
	minFlushTime time.Duration
}

// NewStreamingBuffer creates a buffer with the default batching policy.
func NewStreamingBuffer() *StreamingBuffer {
	return &StreamingBuffer{
		batchSize:    defaultBatchSize,
		minFlushTime: time.Second / defaultMaxFPS,
		lastFlush:    time.Now(),
	}
}

// Write appends a token. Safe to call from the decode goroutine while
// the update loop flushes.
func (b *StreamingBuffer) Write(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer.WriteString(token)
	b.count++
}

// ShouldFlush reports whether enough tokens or enough time has
// accumulated to justify a re-render.
func (b *StreamingBuffer) ShouldFlush() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return false
	}
	return b.count >= b.batchSize || time.Since(b.lastFlush) >= b.minFlushTime
}

// Flush drains the buffered tokens when a flush is due. Returns the
// drained text and whether anything was drained.
func (b *StreamingBuffer) Flush() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return "", false
	}
	if b.count < b.batchSize && time.Since(b.lastFlush) < b.minFlushTime {
		return "", false
	}
	return b.drainLocked(), true
}

// ForceFlush drains everything regardless of batching policy. Called on
// stream completion so no tail tokens are lost.
func (b *StreamingBuffer) ForceFlush() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drainLocked()
}

// drainLocked empties the buffer. Caller holds mu.
func (b *StreamingBuffer) drainLocked() string {
	content := b.buffer.String()
	b.buffer.Reset()
	b.count = 0
	b.lastFlush = time.Now()
	return content
}

// Pending returns the number of tokens waiting to be flushed.
func (b *StreamingBuffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Reset discards any buffered content, used when a stream is cancelled.
func (b *StreamingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer.Reset()
	b.count = 0
	b.lastFlush = time.Now()
}

// =============================================================================
// STREAM TICK
// =============================================================================

// streamTickInterval matches the flush cadence of the buffer.
const streamTickInterval = time.Second / defaultMaxFPS

// streamTickCmd schedules the next flush tick while a stream is open.
func streamTickCmd() tea.Cmd {
	return tea.Tick(streamTickInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
