// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/model"
)

// recordingSyncer captures feedback requests and optionally fails.
type recordingSyncer struct {
	requests []*api.FeedbackRequest
	err      error
}

func (s *recordingSyncer) SendFeedback(_ context.Context, fb *api.FeedbackRequest) error {
	s.requests = append(s.requests, fb)
	return s.err
}

func votedConversation(t *testing.T) *model.Conversation {
	t.Helper()
	conv := model.NewConversation("sys")
	if _, err := conv.AppendUserTurn("what is quantization"); err != nil {
		t.Fatal(err)
	}
	conv.CompleteStructuredTurn("reducing numeric precision", model.TurnMeta{Mode: "adapter", Domain: "ml"})
	return conv
}

func TestCastVoteSyncsPayload(t *testing.T) {
	syncer := &recordingSyncer{}
	gate := NewGate(syncer)
	conv := votedConversation(t)
	idx := conv.TurnCount() - 1

	if !gate.CastVote(context.Background(), conv, idx, model.FeedbackUp) {
		t.Fatal("CastVote = false, want true")
	}

	if len(syncer.requests) != 1 {
		t.Fatalf("sync calls = %d, want 1", len(syncer.requests))
	}
	req := syncer.requests[0]
	if req.Query != "what is quantization" {
		t.Errorf("query = %q", req.Query)
	}
	if req.Response != "reducing numeric precision" {
		t.Errorf("response = %q", req.Response)
	}
	if req.Rating != 1 {
		t.Errorf("rating = %d, want 1", req.Rating)
	}
	if req.ModelMode != "adapter" {
		t.Errorf("model_mode = %q, want adapter", req.ModelMode)
	}
}

func TestCastVoteDownRating(t *testing.T) {
	syncer := &recordingSyncer{}
	gate := NewGate(syncer)
	conv := votedConversation(t)
	idx := conv.TurnCount() - 1

	gate.CastVote(context.Background(), conv, idx, model.FeedbackDown)

	if len(syncer.requests) != 1 || syncer.requests[0].Rating != -1 {
		t.Fatalf("requests = %+v, want one with rating -1", syncer.requests)
	}
}

func TestRevoteDoesNotSync(t *testing.T) {
	syncer := &recordingSyncer{}
	gate := NewGate(syncer)
	conv := votedConversation(t)
	idx := conv.TurnCount() - 1

	gate.CastVote(context.Background(), conv, idx, model.FeedbackUp)
	if gate.CastVote(context.Background(), conv, idx, model.FeedbackDown) {
		t.Error("re-vote = true, want false")
	}

	if len(syncer.requests) != 1 {
		t.Errorf("sync calls = %d, want 1 (re-vote must not resync)", len(syncer.requests))
	}
	if conv.Turns[idx].Feedback != model.FeedbackUp {
		t.Errorf("feedback = %q, want up", conv.Turns[idx].Feedback)
	}
}

func TestInvalidTargetNoNetworkCall(t *testing.T) {
	syncer := &recordingSyncer{}
	gate := NewGate(syncer)
	conv := votedConversation(t)

	// Index 1 is the user turn.
	if gate.CastVote(context.Background(), conv, 1, model.FeedbackUp) {
		t.Error("vote on user turn = true, want false")
	}
	if len(syncer.requests) != 0 {
		t.Errorf("sync calls = %d, want 0", len(syncer.requests))
	}
}

func TestSyncFailureKeepsLocalVote(t *testing.T) {
	syncer := &recordingSyncer{err: errors.New("backend down")}
	gate := NewGate(syncer)
	conv := votedConversation(t)
	idx := conv.TurnCount() - 1

	// The sync error is swallowed; the vote stands.
	if !gate.CastVote(context.Background(), conv, idx, model.FeedbackUp) {
		t.Fatal("CastVote = false, want true despite sync failure")
	}
	if conv.Turns[idx].Feedback != model.FeedbackUp {
		t.Errorf("feedback = %q, want up (no rollback)", conv.Turns[idx].Feedback)
	}
}

func TestSyncVoteOutOfRangeIndex(t *testing.T) {
	syncer := &recordingSyncer{}
	gate := NewGate(syncer)
	conv := votedConversation(t)

	// SyncVote is an exported entry point; a caller that bypasses
	// CastVote must not be able to panic it.
	gate.SyncVote(context.Background(), conv, -1, model.FeedbackUp)
	gate.SyncVote(context.Background(), conv, conv.TurnCount(), model.FeedbackUp)

	if len(syncer.requests) != 0 {
		t.Errorf("sync calls = %d, want 0", len(syncer.requests))
	}
}

func TestNilSyncerIsLocalOnly(t *testing.T) {
	gate := NewGate(nil)
	conv := votedConversation(t)
	idx := conv.TurnCount() - 1

	if !gate.CastVote(context.Background(), conv, idx, model.FeedbackUp) {
		t.Fatal("CastVote = false, want true without a syncer")
	}
}
