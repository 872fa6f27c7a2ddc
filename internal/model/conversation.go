// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBlankInput is returned when a user turn is submitted with empty or
// whitespace-only text.
var ErrBlankInput = errors.New("blank input")

// StreamHandle addresses the assistant turn owned by an open stream.
// Chunks are routed by stable identity rather than list position, so a
// stale handle can never corrupt a turn appended after it.
type StreamHandle string

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered turn history for one client session.
//
// Invariants: turns keep insertion order and are never removed or
// reordered; at most one streaming assistant turn is open at a time
// (callers serialize submissions); feedback on a turn is set at most
// once.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Turns
	Turns []*Turn `json:"turns"`
}

// NewConversation creates a conversation seeded with one system turn.
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{
		ID:        "conv_" + uuid.NewString(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Turns:     make([]*Turn, 0),
	}
	c.append(NewSystemTurn(systemPrompt))
	return c
}

// append adds a turn to the history.
func (c *Conversation) append(turn *Turn) *Turn {
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = time.Now()
	c.updateTitle()
	return turn
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// AppendUserTurn appends a user turn. Empty or whitespace-only text is
// rejected without mutating the history.
func (c *Conversation) AppendUserTurn(text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlankInput
	}
	return c.append(NewUserTurn(text)), nil
}

// BeginAssistantStream appends an empty streaming assistant turn and
// returns its handle. Callers must not open a second stream while one
// is in flight; that discipline lives at the submission boundary, not
// here.
func (c *Conversation) BeginAssistantStream() StreamHandle {
	turn := NewStreamingAssistantTurn()
	c.append(turn)
	return StreamHandle(turn.ID)
}

// AppendStreamChunk concatenates text onto the turn identified by
// handle. Returns false when the handle does not resolve to an open
// streaming turn.
func (c *Conversation) AppendStreamChunk(handle StreamHandle, text string) bool {
	turn := c.GetTurnByID(string(handle))
	if turn == nil || !turn.IsStreaming {
		return false
	}
	turn.AppendToken(text)
	c.UpdatedAt = time.Now()
	return true
}

// FinalizeStream closes the streaming turn identified by handle,
// freezing its content. Safe to call on an already-finalized handle.
func (c *Conversation) FinalizeStream(handle StreamHandle, stats *Statistics) {
	turn := c.GetTurnByID(string(handle))
	if turn == nil {
		return
	}
	turn.FinalizeStream(stats)
	c.UpdatedAt = time.Now()
}

// CompleteStructuredTurn appends one fully-formed assistant turn with
// routing metadata attached.
func (c *Conversation) CompleteStructuredTurn(content string, meta TurnMeta) *Turn {
	return c.append(NewStructuredAssistantTurn(content, meta))
}

// AppendSystemTurn appends an informational system turn.
func (c *Conversation) AppendSystemTurn(text string) *Turn {
	return c.append(NewSystemTurn(text))
}

// AppendErrorTurn appends an error turn. The conversation history is
// the user-visible error channel for failed submissions.
func (c *Conversation) AppendErrorTurn(message string) *Turn {
	return c.append(NewErrorTurn(message))
}

// =============================================================================
// VOTING
// =============================================================================

// CastVote records a vote on the turn at the given index. It is a
// no-op when the index is out of range, the target is not an assistant
// turn, feedback is already set, or no user turn precedes the target.
// Returns true only when the vote was newly recorded.
//
// The local update is optimistic: it happens before any backend
// acknowledgment and is never rolled back.
func (c *Conversation) CastVote(index int, direction Feedback) bool {
	if index < 0 || index >= len(c.Turns) {
		return false
	}
	turn := c.Turns[index]
	if turn.Role != RoleAssistant || turn.IsStreaming {
		return false
	}
	if _, ok := c.PriorUserQuery(index); !ok {
		return false
	}
	if !turn.SetFeedback(direction) {
		return false
	}
	c.UpdatedAt = time.Now()
	return true
}

// PriorUserQuery returns the text of the nearest user turn scanning
// backward from the given index, and whether one exists.
func (c *Conversation) PriorUserQuery(index int) (string, bool) {
	if index > len(c.Turns) {
		index = len(c.Turns)
	}
	for i := index - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleUser {
			return c.Turns[i].Content, true
		}
	}
	return "", false
}

// =============================================================================
// LOOKUPS
// =============================================================================

// GetTurnByID returns a turn by its ID, or nil.
func (c *Conversation) GetTurnByID(id string) *Turn {
	for _, turn := range c.Turns {
		if turn.ID == id {
			return turn
		}
	}
	return nil
}

// IndexOf returns the position of a turn by ID, or -1.
func (c *Conversation) IndexOf(id string) int {
	for i, turn := range c.Turns {
		if turn.ID == id {
			return i
		}
	}
	return -1
}

// GetLastTurn returns the most recent turn, or nil if empty.
func (c *Conversation) GetLastTurn() *Turn {
	if len(c.Turns) == 0 {
		return nil
	}
	return c.Turns[len(c.Turns)-1]
}

// GetLastUserTurn returns the most recent user turn, or nil.
func (c *Conversation) GetLastUserTurn() *Turn {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleUser {
			return c.Turns[i]
		}
	}
	return nil
}

// GetLastAssistantTurn returns the most recent assistant turn, or nil.
func (c *Conversation) GetLastAssistantTurn() *Turn {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleAssistant {
			return c.Turns[i]
		}
	}
	return nil
}

// TurnCount returns the number of turns, including the seeded system
// turn.
func (c *Conversation) TurnCount() int {
	return len(c.Turns)
}

// GetHistory returns the turn history for display.
func (c *Conversation) GetHistory() []*Turn {
	return c.Turns
}

// =============================================================================
// TOKEN TRACKING
// =============================================================================

// EstimateTokens estimates the total token count of the conversation.
func (c *Conversation) EstimateTokens() int {
	total := 0
	for _, turn := range c.Turns {
		total += turn.EstimateTokens()
		// Overhead for turn structure (~4 tokens per turn)
		total += 4
	}
	return total
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle auto-generates a title from the first user turn if not set.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}
	for _, turn := range c.Turns {
		if turn.Role == RoleUser {
			c.Title = turn.Preview(50)
			return
		}
	}
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a deep copy of the conversation. Streaming builder
// state is not carried over; clone while no stream is open.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Turns:     make([]*Turn, len(c.Turns)),
	}
	for i, turn := range c.Turns {
		turnCopy := &Turn{
			ID:            turn.ID,
			Role:          turn.Role,
			Timestamp:     turn.Timestamp,
			Content:       turn.GetDisplayContent(),
			Origin:        turn.Origin,
			Feedback:      turn.Feedback,
			TokenCount:    turn.TokenCount,
			TTFT:          turn.TTFT,
			TotalDuration: turn.TotalDuration,
			TokensPerSec:  turn.TokensPerSec,
		}
		if turn.Meta != nil {
			metaCopy := *turn.Meta
			turnCopy.Meta = &metaCopy
		}
		clone.Turns[i] = turnCopy
	}
	return clone
}
