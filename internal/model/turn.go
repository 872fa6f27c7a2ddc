// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// ORIGIN TYPE
// =============================================================================

// Origin distinguishes how an assistant turn was produced. Structured
// turns arrive complete with routing metadata; streamed turns grow
// token by token and carry no metadata (the streaming endpoint does
// not report routing decisions).
type Origin string

const (
	OriginNone       Origin = ""
	OriginStructured Origin = "structured"
	OriginStreamed   Origin = "streamed"
)

// =============================================================================
// FEEDBACK TYPE
// =============================================================================

// Feedback is a one-shot thumbs rating on an assistant turn.
type Feedback string

const (
	FeedbackNone Feedback = ""
	FeedbackUp   Feedback = "up"
	FeedbackDown Feedback = "down"
)

// Rating returns the wire value for the feedback endpoint.
func (f Feedback) Rating() int {
	switch f {
	case FeedbackUp:
		return 1
	case FeedbackDown:
		return -1
	default:
		return 0
	}
}

// =============================================================================
// TURN META
// =============================================================================

// TurnMeta is the routing annotation attached to structured assistant
// turns at creation time. Streamed turns never carry one.
type TurnMeta struct {
	Mode        string `json:"mode"`
	Domain      string `json:"domain"`
	ContextUsed bool   `json:"context_used"`
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn represents a single entry in a conversation. The role is fixed
// at creation. Content of a streaming assistant turn grows append-only
// until the stream is finalized, after which it is immutable.
type Turn struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Origin and metadata, assistant turns only. Meta is non-nil
	// exactly when Origin is OriginStructured.
	Origin Origin    `json:"origin,omitempty"`
	Meta   *TurnMeta `json:"meta,omitempty"`

	// Feedback transitions absent -> up|down exactly once.
	Feedback Feedback `json:"feedback,omitempty"`

	// Streaming state (not persisted)
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Performance metrics (streamed assistant turns)
	TokenCount    int           `json:"token_count,omitempty"`
	TTFT          time.Duration `json:"ttft_ns,omitempty"`
	TotalDuration time.Duration `json:"total_duration_ns,omitempty"`
	TokensPerSec  float64       `json:"tokens_per_sec,omitempty"`
}

// NewTurn creates a new turn with a generated ID.
func NewTurn(role Role, content string) *Turn {
	return &Turn{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserTurn creates a new user turn.
func NewUserTurn(content string) *Turn {
	return NewTurn(RoleUser, content)
}

// NewSystemTurn creates a new system turn.
func NewSystemTurn(content string) *Turn {
	return NewTurn(RoleSystem, content)
}

// NewErrorTurn creates a new error turn.
func NewErrorTurn(message string) *Turn {
	return NewTurn(RoleError, message)
}

// NewStreamingAssistantTurn creates an empty assistant turn that will
// accumulate streamed tokens.
func NewStreamingAssistantTurn() *Turn {
	return &Turn{
		ID:          generateID(),
		Role:        RoleAssistant,
		Origin:      OriginStreamed,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewStructuredAssistantTurn creates a complete assistant turn with
// routing metadata attached.
func NewStructuredAssistantTurn(content string, meta TurnMeta) *Turn {
	return &Turn{
		ID:        generateID(),
		Role:      RoleAssistant,
		Origin:    OriginStructured,
		Content:   content,
		Meta:      &meta,
		Timestamp: time.Now(),
	}
}

// =============================================================================
// TURN METHODS
// =============================================================================

// AppendToken appends a token to a streaming turn. No-op once the
// stream has been finalized.
func (t *Turn) AppendToken(token string) {
	if t.IsStreaming {
		t.streamContent.WriteString(token)
	}
}

// FinalizeStream completes streaming, freezing content and recording
// statistics.
func (t *Turn) FinalizeStream(stats *Statistics) {
	if !t.IsStreaming {
		return
	}

	t.Content = t.streamContent.String()
	t.streamContent.Reset()
	t.IsStreaming = false

	if stats != nil {
		t.TTFT = stats.TTFT
		t.TotalDuration = stats.TotalDuration
		t.TokenCount = stats.CompletionTokens
		t.TokensPerSec = stats.TokensPerSecond
	}
}

// SetFeedback records a vote on this turn. Returns false without
// mutating when the turn is not an assistant turn, when feedback was
// already set, or when the direction is not a vote.
func (t *Turn) SetFeedback(direction Feedback) bool {
	if t.Role != RoleAssistant {
		return false
	}
	if t.Feedback != FeedbackNone {
		return false
	}
	if direction != FeedbackUp && direction != FeedbackDown {
		return false
	}
	t.Feedback = direction
	return true
}

// HasFeedback returns true once a vote has been cast on this turn.
func (t *Turn) HasFeedback() bool {
	return t.Feedback != FeedbackNone
}

// GetDisplayContent returns the content to display (streaming or final).
func (t *Turn) GetDisplayContent() string {
	if t.IsStreaming {
		return t.streamContent.String()
	}
	return t.Content
}

// ModelMode returns the routing mode for feedback reporting, empty for
// streamed turns.
func (t *Turn) ModelMode() string {
	if t.Meta != nil {
		return t.Meta.Mode
	}
	return ""
}

// Preview returns a truncated preview of the turn content.
// Uses rune-based truncation to handle Unicode correctly.
func (t *Turn) Preview(maxLen int) string {
	content := t.GetDisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the turn has no content.
func (t *Turn) IsEmpty() bool {
	return len(t.Content) == 0 && t.streamContent.Len() == 0
}

// EstimateTokens gives a rough estimate of token count.
// Uses the approximation of ~4 characters per token.
func (t *Turn) EstimateTokens() int {
	content := t.GetDisplayContent()
	return (len(content) + 3) / 4
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing and token count information for a generation.
type Statistics struct {
	// Timestamps
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	// Token counts
	CompletionTokens int

	// Derived metrics (computed on Finalize)
	TTFT            time.Duration
	TotalDuration   time.Duration
	TokensPerSecond float64
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
	}
}

// RecordFirstToken records when the first token was received.
func (s *Statistics) RecordFirstToken() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
}

// Finalize computes the final statistics.
func (s *Statistics) Finalize(tokenCount int) {
	s.EndTime = time.Now()
	s.CompletionTokens = tokenCount
	s.TotalDuration = s.EndTime.Sub(s.StartTime)

	if s.TotalDuration > 0 {
		s.TokensPerSecond = float64(tokenCount) / s.TotalDuration.Seconds()
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique turn ID.
func generateID() string {
	return "turn_" + uuid.NewString()
}
