// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package health

import (
	"context"
	"errors"
	"testing"

	"github.com/saksham-jain177/inferchat/internal/api"
)

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestSnapshotStatus(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
		want Status
	}{
		{
			name: "nil snapshot is unknown",
			snap: nil,
			want: StatusUnknown,
		},
		{
			name: "high load wins regardless of error rate",
			snap: &Snapshot{ActiveRequests: 60, TotalRequests: 100, TotalErrors: 50},
			want: StatusHighLoad,
		},
		{
			name: "ten percent errors is degraded",
			snap: &Snapshot{ActiveRequests: 1, TotalRequests: 100, TotalErrors: 10},
			want: StatusDegraded,
		},
		{
			name: "no errors is operational",
			snap: &Snapshot{TotalRequests: 100, TotalErrors: 0},
			want: StatusOperational,
		},
		{
			name: "error rate at threshold is operational",
			snap: &Snapshot{TotalRequests: 100, TotalErrors: 5},
			want: StatusOperational,
		},
		{
			name: "errors with zero requests is operational",
			snap: &Snapshot{TotalRequests: 0, TotalErrors: 3},
			want: StatusOperational,
		},
		{
			name: "active exactly at threshold is not high load",
			snap: &Snapshot{ActiveRequests: 50, TotalRequests: 10},
			want: StatusOperational,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.snap.Status(); got != tc.want {
				t.Errorf("Status() = %v, want %v", got, tc.want)
			}
		})
	}
}

// =============================================================================
// RATE TESTS
// =============================================================================

func TestHitRate(t *testing.T) {
	tests := []struct {
		name   string
		hits   int
		misses int
		want   float64
	}{
		{"empty cache yields zero not NaN", 0, 0, 0},
		{"all hits", 50, 0, 100},
		{"half hits", 25, 25, 50},
		{"rounds to one decimal", 1, 2, 33.3},
		{"two thirds", 2, 1, 66.7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := &Snapshot{CacheHits: tc.hits, CacheMisses: tc.misses}
			if got := snap.HitRate(); got != tc.want {
				t.Errorf("HitRate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestErrorRate(t *testing.T) {
	snap := &Snapshot{TotalRequests: 200, TotalErrors: 10}
	if got := snap.ErrorRate(); got != 5 {
		t.Errorf("ErrorRate() = %v, want 5", got)
	}

	empty := &Snapshot{TotalRequests: 0, TotalErrors: 0}
	if got := empty.ErrorRate(); got != 0 {
		t.Errorf("ErrorRate() with no requests = %v, want 0", got)
	}
}

func TestTotalAdapterCalls(t *testing.T) {
	snap := &Snapshot{AdapterUsage: map[string]int{"medical": 3, "legal": 7}}
	if got := snap.TotalAdapterCalls(); got != 10 {
		t.Errorf("TotalAdapterCalls() = %d, want 10", got)
	}
}

// =============================================================================
// AGGREGATOR TESTS
// =============================================================================

// stubFetcher returns a scripted sequence of results.
type stubFetcher struct {
	results []fetchResult
	calls   int
}

type fetchResult struct {
	stats *api.SystemStats
	err   error
}

func (f *stubFetcher) FetchStats(_ context.Context) (*api.SystemStats, error) {
	r := f.results[f.calls]
	if f.calls < len(f.results)-1 {
		f.calls++
	}
	return r.stats, r.err
}

func TestAggregatorSuccessReplacesSnapshot(t *testing.T) {
	fetcher := &stubFetcher{results: []fetchResult{
		{stats: &api.SystemStats{TotalRequests: 10, AdapterUsage: map[string]int{"a": 1}}},
		{stats: &api.SystemStats{TotalRequests: 20}},
	}}
	agg := NewAggregator(fetcher)

	if agg.Snapshot() != nil {
		t.Fatal("snapshot before first poll should be nil")
	}
	if agg.Status() != StatusUnknown {
		t.Errorf("Status() before poll = %v, want Unknown", agg.Status())
	}

	if err := agg.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if agg.Snapshot().TotalRequests != 10 {
		t.Errorf("TotalRequests = %d, want 10", agg.Snapshot().TotalRequests)
	}

	// The second poll replaces wholesale; the adapter usage from the
	// first snapshot must not linger.
	agg.Poll(context.Background())
	snap := agg.Snapshot()
	if snap.TotalRequests != 20 {
		t.Errorf("TotalRequests = %d, want 20", snap.TotalRequests)
	}
	if len(snap.AdapterUsage) != 0 {
		t.Errorf("AdapterUsage = %v, want empty (no merge)", snap.AdapterUsage)
	}
}

func TestAggregatorFailureKeepsSnapshot(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fetcher := &stubFetcher{results: []fetchResult{
		{stats: &api.SystemStats{TotalRequests: 10}},
		{err: fetchErr},
	}}
	agg := NewAggregator(fetcher)

	agg.Poll(context.Background())
	if err := agg.Poll(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("Poll() error = %v, want %v", err, fetchErr)
	}

	// Previous snapshot is retained, error is surfaced.
	if agg.Snapshot() == nil || agg.Snapshot().TotalRequests != 10 {
		t.Error("failed poll discarded the previous snapshot")
	}
	if !errors.Is(agg.Err(), fetchErr) {
		t.Errorf("Err() = %v, want %v", agg.Err(), fetchErr)
	}
}

func TestAggregatorSuccessClearsError(t *testing.T) {
	fetcher := &stubFetcher{results: []fetchResult{
		{err: errors.New("boom")},
		{stats: &api.SystemStats{TotalRequests: 5}},
	}}
	agg := NewAggregator(fetcher)

	agg.Poll(context.Background())
	if agg.Err() == nil {
		t.Fatal("Err() = nil after failed poll")
	}

	agg.Poll(context.Background())
	if agg.Err() != nil {
		t.Errorf("Err() = %v after successful poll, want nil", agg.Err())
	}
	if agg.Status() != StatusOperational {
		t.Errorf("Status() = %v, want Operational", agg.Status())
	}
}

func TestAggregatorReset(t *testing.T) {
	fetcher := &stubFetcher{results: []fetchResult{
		{stats: &api.SystemStats{TotalRequests: 5}},
	}}
	agg := NewAggregator(fetcher)
	agg.Poll(context.Background())

	agg.Reset()
	if agg.Snapshot() != nil || agg.Err() != nil {
		t.Error("Reset() did not discard state")
	}
	if agg.Status() != StatusUnknown {
		t.Errorf("Status() after reset = %v, want Unknown", agg.Status())
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUnknown, "Unknown"},
		{StatusOperational, "Operational"},
		{StatusDegraded, "Degraded"},
		{StatusHighLoad, "High Load"},
	}
	for _, tc := range tests {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.status, got, tc.want)
		}
	}
}
