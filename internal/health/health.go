// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package health derives an operational view of the inference server
// from its raw counters.
//
// Snapshots are replaced wholesale on every successful poll, never
// merged. Derived values (status, hit rate, error rate) are computed
// fresh on each access so they can never go stale relative to the
// counters they are read from.
package health

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/saksham-jain177/inferchat/internal/api"
)

// PollInterval is the cadence of telemetry fetches while the health
// view is mounted.
const PollInterval = 3 * time.Second

// highLoadThreshold is the active-request count above which the server
// is considered under high load.
const highLoadThreshold = 50

// degradedErrorRatio is the error fraction above which the server is
// considered degraded.
const degradedErrorRatio = 0.05

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status classifies the server's operational state.
type Status int

const (
	StatusUnknown Status = iota
	StatusOperational
	StatusDegraded
	StatusHighLoad
)

// String returns the display label for the status.
func (s Status) String() string {
	switch s {
	case StatusOperational:
		return "Operational"
	case StatusDegraded:
		return "Degraded"
	case StatusHighLoad:
		return "High Load"
	default:
		return "Unknown"
	}
}

// =============================================================================
// SNAPSHOT TYPE
// =============================================================================

// Snapshot is a point-in-time projection of the server's counters.
type Snapshot struct {
	ActiveRequests int
	TotalRequests  int
	TotalErrors    int
	CacheHits      int
	CacheMisses    int
	AdapterUsage   map[string]int
	FetchedAt      time.Time
}

// NewSnapshot builds a snapshot from a wire stats payload.
func NewSnapshot(stats *api.SystemStats) *Snapshot {
	usage := make(map[string]int, len(stats.AdapterUsage))
	for domain, count := range stats.AdapterUsage {
		usage[domain] = count
	}
	return &Snapshot{
		ActiveRequests: stats.ActiveRequests,
		TotalRequests:  stats.TotalRequests,
		TotalErrors:    stats.TotalErrors,
		CacheHits:      stats.CacheHits,
		CacheMisses:    stats.CacheMisses,
		AdapterUsage:   usage,
		FetchedAt:      time.Now(),
	}
}

// Status classifies this snapshot. Evaluated in order, first match
// wins: high load before degradation, degradation before operational.
func (s *Snapshot) Status() Status {
	if s == nil {
		return StatusUnknown
	}
	if s.ActiveRequests > highLoadThreshold {
		return StatusHighLoad
	}
	if s.TotalErrors > 0 && s.errorRatio() > degradedErrorRatio {
		return StatusDegraded
	}
	return StatusOperational
}

// errorRatio returns errors as a fraction of total requests.
func (s *Snapshot) errorRatio() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.TotalErrors) / float64(s.TotalRequests)
}

// HitRate returns the cache hit percentage, rounded to one decimal.
// A zero denominator yields 0, not NaN: the denominator is clamped to
// 1 while the numerator stays 0.
func (s *Snapshot) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total < 1 {
		total = 1
	}
	rate := float64(s.CacheHits) / float64(total) * 100
	return math.Round(rate*10) / 10
}

// ErrorRate returns the error percentage, 0 when no requests have been
// served.
func (s *Snapshot) ErrorRate() float64 {
	return s.errorRatio() * 100
}

// TotalAdapterCalls sums the per-domain adapter usage counts.
func (s *Snapshot) TotalAdapterCalls() int {
	total := 0
	for _, count := range s.AdapterUsage {
		total += count
	}
	return total
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Fetcher is the backend surface the aggregator polls. *api.Client
// satisfies it.
type Fetcher interface {
	FetchStats(ctx context.Context) (*api.SystemStats, error)
}

// Aggregator owns the latest snapshot and the latest fetch error.
// Exactly one of the two is current: a successful poll replaces the
// snapshot and clears the error; a failed poll keeps the previous
// snapshot and surfaces the error instead. Views render one or the
// other, never both.
type Aggregator struct {
	fetcher Fetcher

	mu       sync.RWMutex
	snapshot *Snapshot
	lastErr  error
}

// NewAggregator creates an aggregator polling the given backend.
func NewAggregator(fetcher Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Poll performs one stats fetch and folds the result into the
// aggregator. The returned error mirrors what Err will report.
func (a *Aggregator) Poll(ctx context.Context) error {
	stats, err := a.fetcher.FetchStats(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.lastErr = err
		return err
	}
	a.snapshot = NewSnapshot(stats)
	a.lastErr = nil
	return nil
}

// Snapshot returns the most recent successful snapshot, nil before the
// first success.
func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Err returns the error from the most recent poll, nil after a
// success.
func (a *Aggregator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

// Status classifies the current snapshot; Unknown before the first
// successful poll.
func (a *Aggregator) Status() Status {
	return a.Snapshot().Status()
}

// Reset discards the snapshot and error, used when the telemetry view
// is torn down.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot = nil
	a.lastErr = nil
}
