// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a streaming request has been dispatched.
// Handle addresses the assistant turn that will receive the tokens.
type StreamStartMsg struct {
	Handle    model.StreamHandle
	StartTime time.Time
}

// StreamTickMsg drives the flush cadence while a stream is open.
type StreamTickMsg struct {
	Time time.Time
}

// StreamCompleteMsg signals the end of a stream, successful or not.
// Err is nil on clean completion, context.Canceled after a user abort,
// and an api error otherwise. Stats carries timing for the footer.
type StreamCompleteMsg struct {
	Handle model.StreamHandle
	Stats  *model.Statistics
	Err    error
}

// =============================================================================
// STRUCTURED MESSAGES
// =============================================================================

// StructuredReplyMsg carries the result of a structured inference call.
type StructuredReplyMsg struct {
	Response *api.InferResponse
	Elapsed  time.Duration
	Err      error
}

// =============================================================================
// FEEDBACK MESSAGES
// =============================================================================

// VoteSyncedMsg reports that a vote finished its best-effort backend
// sync. The local vote is already recorded by the time this arrives.
type VoteSyncedMsg struct {
	TurnID string
}

// =============================================================================
// CONNECTION MESSAGES
// =============================================================================

// ServerStatusMsg reports the result of a reachability probe against
// the inference server.
type ServerStatusMsg struct {
	Reachable bool
	Err       error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// StatusNoteMsg sets a transient note in the status area.
type StatusNoteMsg struct {
	Text string
}

// clearStatusNoteMsg removes an expired status note.
type clearStatusNoteMsg struct {
	id int
}
