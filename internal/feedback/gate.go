// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feedback enforces the single-vote rule and syncs ratings to
// the backend.
//
// The local vote is authoritative for the UI: it is applied before the
// network call and never rolled back. Backend synchronization is
// best-effort telemetry; failures are logged and swallowed.
package feedback

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/model"
)

const (
	// syncTimeout bounds each backend sync attempt.
	syncTimeout = 10 * time.Second

	// syncRate limits how fast votes are pushed to the backend.
	// Local votes are never throttled, only the telemetry sync.
	syncRate  = rate.Limit(1)
	syncBurst = 5
)

// Syncer is the backend surface the gate needs. *api.Client satisfies it.
type Syncer interface {
	SendFeedback(ctx context.Context, fb *api.FeedbackRequest) error
}

// Gate wraps the conversation's vote operation with backend
// synchronization.
type Gate struct {
	syncer  Syncer
	limiter *rate.Limiter
	timeout time.Duration
}

// NewGate creates a gate syncing through the given backend.
func NewGate(syncer Syncer) *Gate {
	return &Gate{
		syncer:  syncer,
		limiter: rate.NewLimiter(syncRate, syncBurst),
		timeout: syncTimeout,
	}
}

// WithTimeout sets the per-sync timeout.
func (g *Gate) WithTimeout(timeout time.Duration) *Gate {
	g.timeout = timeout
	return g
}

// CastVote records a vote on the turn at index and, when newly
// recorded, syncs it to the backend. Returns true only when the local
// vote was newly set; re-votes and invalid targets are no-ops with no
// network call.
func (g *Gate) CastVote(ctx context.Context, conv *model.Conversation, index int, direction model.Feedback) bool {
	if !conv.CastVote(index, direction) {
		return false
	}
	g.SyncVote(ctx, conv, index, direction)
	return true
}

// SyncVote pushes one already-recorded vote to the backend. Failures
// never surface to the caller. Exposed separately so interactive
// callers can record the vote synchronously and sync off-thread.
func (g *Gate) SyncVote(ctx context.Context, conv *model.Conversation, index int, direction model.Feedback) {
	if g.syncer == nil {
		return
	}
	if !g.limiter.Allow() {
		log.Printf("feedback sync skipped: rate limited")
		return
	}

	if index < 0 || index >= len(conv.Turns) {
		return
	}
	turn := conv.Turns[index]
	query, ok := conv.PriorUserQuery(index)
	if !ok {
		// CastVote already requires a preceding user turn; this only
		// trips if the caller bypassed the store.
		return
	}

	req := &api.FeedbackRequest{
		Query:     query,
		Response:  turn.Content,
		Rating:    direction.Rating(),
		ModelMode: turn.ModelMode(),
	}

	syncCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.syncer.SendFeedback(syncCtx, req); err != nil {
		log.Printf("feedback sync failed: %v", err)
	}
}
