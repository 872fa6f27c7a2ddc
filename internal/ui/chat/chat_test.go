// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/config"
	"github.com/saksham-jain177/inferchat/internal/model"
	"github.com/saksham-jain177/inferchat/internal/ui/styles"
)

// newTestServer serves the inference endpoints with canned responses.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/infer-adaptive", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"response":     "structured answer",
			"mode":         "adapter",
			"domain":       "general",
			"context_used": true,
		})
	})

	mux.HandleFunc("/infer-stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"Hello", ", ", "world"} {
			fmt.Fprintf(w, "data: %s\n\n", token)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	mux.HandleFunc("/feedback", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestModel(t *testing.T, serverURL, deliveryMode string) Model {
	t.Helper()
	cfg := config.Default()
	cfg.Server.BaseURL = serverURL
	cfg.Chat.DeliveryMode = deliveryMode
	cfg.UI.Markdown = false

	m := New(cfg, api.NewClient(serverURL), styles.NewTheme())
	m.setSize(100, 40)
	return m
}

// =============================================================================
// STREAMING FLOW
// =============================================================================

func TestStreamFlowAppendsTokens(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	_, err := m.conversation.AppendUserTurn("hi")
	require.NoError(t, err)
	handle := m.conversation.BeginAssistantStream()
	m.state = StateStreaming
	m.streamHandle = handle

	msg := m.streamCmd(handle, "hi")()
	complete, ok := msg.(StreamCompleteMsg)
	require.True(t, ok, "expected StreamCompleteMsg, got %T", msg)
	require.NoError(t, complete.Err)
	assert.Equal(t, handle, complete.Handle)
	assert.Equal(t, 3, complete.Stats.CompletionTokens)

	m, _ = m.handleStreamComplete(complete)

	turn := m.conversation.GetLastAssistantTurn()
	require.NotNil(t, turn)
	assert.False(t, turn.IsStreaming)
	assert.Equal(t, "Hello, world", turn.Content)
	assert.Equal(t, StateReady, m.state)
}

func TestStreamTickDrainsBuffer(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	_, err := m.conversation.AppendUserTurn("hi")
	require.NoError(t, err)
	m.streamHandle = m.conversation.BeginAssistantStream()
	m.state = StateStreaming

	// Enough tokens to exceed the batch threshold.
	for i := 0; i < defaultBatchSize; i++ {
		m.streamBuffer.Write("x")
	}

	m, cmd := m.handleStreamTick()
	assert.NotNil(t, cmd, "streaming state should schedule the next tick")

	turn := m.conversation.GetTurnByID(string(m.streamHandle))
	require.NotNil(t, turn)
	assert.Equal(t, strings.Repeat("x", defaultBatchSize), turn.GetDisplayContent())
}

func TestStreamTickStopsWhenIdle(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	m.state = StateReady
	_, cmd := m.handleStreamTick()
	assert.Nil(t, cmd, "idle state must not reschedule the tick loop")
}

func TestStreamOpenFailureAppendsErrorTurn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"model not loaded"}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	_, err := m.conversation.AppendUserTurn("hi")
	require.NoError(t, err)
	handle := m.conversation.BeginAssistantStream()
	m.state = StateStreaming
	m.streamHandle = handle

	msg := m.streamCmd(handle, "hi")()
	complete := msg.(StreamCompleteMsg)
	require.Error(t, complete.Err)

	m, _ = m.handleStreamComplete(complete)

	last := m.conversation.GetLastTurn()
	require.NotNil(t, last)
	assert.Equal(t, model.RoleError, last.Role)
	assert.Contains(t, last.Content, "503")
	assert.Equal(t, StateReady, m.state)
}

// =============================================================================
// STRUCTURED FLOW
// =============================================================================

func TestStructuredFlowAttachesMeta(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStructured)

	_, err := m.conversation.AppendUserTurn("ping")
	require.NoError(t, err)
	m.state = StateSending

	msg := m.structuredCmd("ping")()
	reply, ok := msg.(StructuredReplyMsg)
	require.True(t, ok, "expected StructuredReplyMsg, got %T", msg)
	require.NoError(t, reply.Err)

	m, _ = m.handleStructuredReply(reply)

	turn := m.conversation.GetLastAssistantTurn()
	require.NotNil(t, turn)
	assert.Equal(t, "structured answer", turn.Content)
	assert.Equal(t, model.OriginStructured, turn.Origin)
	require.NotNil(t, turn.Meta)
	assert.Equal(t, "adapter", turn.Meta.Mode)
	assert.True(t, turn.Meta.ContextUsed)
	assert.Equal(t, StateReady, m.state)
}

func TestStructuredFailureAppendsErrorTurn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"overloaded"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	m := newTestModel(t, srv.URL, config.DeliveryStructured)

	_, err := m.conversation.AppendUserTurn("ping")
	require.NoError(t, err)
	m.state = StateSending

	reply := m.structuredCmd("ping")().(StructuredReplyMsg)
	require.Error(t, reply.Err)

	m, _ = m.handleStructuredReply(reply)

	last := m.conversation.GetLastTurn()
	assert.Equal(t, model.RoleError, last.Role)
	assert.Contains(t, last.Content, "overloaded")
}

// =============================================================================
// SINGLE-FLIGHT ENFORCEMENT
// =============================================================================

func TestSubmitWhileBusyIsRejected(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)
	before := m.conversation.TurnCount()

	m.state = StateStreaming
	m.input.SetValue("second question")
	m, _ = m.submit()

	assert.Equal(t, before, m.conversation.TurnCount(), "busy submit must not append a turn")
	assert.Equal(t, "second question", m.input.Value(), "input should be preserved")
	assert.NotEmpty(t, m.statusNote)
}

func TestSubmitBlankInputIgnored(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)
	before := m.conversation.TurnCount()

	m.input.SetValue("   ")
	m, cmd := m.submit()

	assert.Nil(t, cmd)
	assert.Equal(t, before, m.conversation.TurnCount())
	assert.Equal(t, StateReady, m.state)
}

// =============================================================================
// VOTING
// =============================================================================

func TestVoteOnLastAssistantTurn(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStructured)

	_, err := m.conversation.AppendUserTurn("q")
	require.NoError(t, err)
	turn := m.conversation.CompleteStructuredTurn("a", model.TurnMeta{Mode: "adapter"})

	m, cmd := m.castVote(model.FeedbackUp)
	assert.NotNil(t, cmd)
	assert.Equal(t, model.FeedbackUp, turn.Feedback)
}

func TestSecondVoteIsRejected(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStructured)

	_, err := m.conversation.AppendUserTurn("q")
	require.NoError(t, err)
	turn := m.conversation.CompleteStructuredTurn("a", model.TurnMeta{Mode: "adapter"})

	m, _ = m.castVote(model.FeedbackUp)
	m, _ = m.castVote(model.FeedbackDown)

	assert.Equal(t, model.FeedbackUp, turn.Feedback, "first vote must stand")
	assert.Contains(t, m.statusNote, "Already voted")
}

func TestVoteWhileStreamingIgnored(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	_, err := m.conversation.AppendUserTurn("q")
	require.NoError(t, err)
	m.conversation.BeginAssistantStream()

	m, cmd := m.castVote(model.FeedbackUp)
	assert.Nil(t, cmd)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func TestCommandClear(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	_, err := m.conversation.AppendUserTurn("hello")
	require.NoError(t, err)
	oldID := m.conversation.ID

	m, _ = m.runCommand("/clear")

	assert.NotEqual(t, oldID, m.conversation.ID)
	assert.Equal(t, 1, m.conversation.TurnCount(), "fresh conversation keeps only the system seed")
}

func TestCommandModeSwitch(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	m, _ = m.runCommand("/mode structured")
	assert.Equal(t, config.DeliveryStructured, m.cfg.Chat.DeliveryMode)

	m, _ = m.runCommand("/mode bogus")
	assert.Equal(t, config.DeliveryStructured, m.cfg.Chat.DeliveryMode, "invalid mode must not apply")
	assert.Contains(t, m.statusNote, "bogus")
}

func TestCommandUnknown(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	m, _ = m.runCommand("/frobnicate")
	assert.Contains(t, m.statusNote, "/frobnicate")
}

func TestCommandHelpAppendsSystemTurn(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)
	before := m.conversation.TurnCount()

	m, _ = m.runCommand("/help")

	assert.Equal(t, before+1, m.conversation.TurnCount())
	last := m.conversation.GetLastTurn()
	assert.Equal(t, model.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "/clear")
}

// =============================================================================
// HEALTH OVERLAY
// =============================================================================

func TestHealthToggleStartsAndStopsPolling(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	m, cmd := m.toggleHealth()
	assert.True(t, m.showHealth)
	assert.NotNil(t, cmd, "mounting must start the poll loop")
	assert.True(t, m.dashboard.Active())

	m, _ = m.toggleHealth()
	assert.False(t, m.showHealth)
	assert.False(t, m.dashboard.Active())
	assert.Nil(t, m.aggregator.Snapshot(), "dismissal discards the snapshot")
}

func TestEscClosesHealthOverlay(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	m, _ = m.toggleHealth()
	require.True(t, m.showHealth)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHealth)
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestCancelWhenIdleIsNoop(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	m, cmd := m.cancelInFlight()
	assert.Nil(t, cmd)
	assert.Equal(t, StateReady, m.state)
}

func TestCancelManagerLifecycle(t *testing.T) {
	cm := newCancelManager()
	assert.False(t, cm.cancel(), "cancel with nothing in flight")

	cancelled := false
	cm.set(func() { cancelled = true })
	assert.True(t, cm.cancel())
	assert.True(t, cancelled)
	assert.False(t, cm.cancel(), "second cancel is a no-op")

	cm.set(func() { t.Fatal("cleared func must not run") })
	cm.clear()
	assert.False(t, cm.cancel())
}

// =============================================================================
// VIEW
// =============================================================================

func TestViewShowsConversation(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	_, err := m.conversation.AppendUserTurn("what is Go")
	require.NoError(t, err)
	m.conversation.CompleteStructuredTurn("a language", model.TurnMeta{Mode: "base-model"})
	m.refreshViewport(true)

	view := m.View()
	assert.Contains(t, view, "what is Go")
	assert.Contains(t, view, "a language")
}

func TestViewHealthOverlayReplacesConversation(t *testing.T) {
	srv := newTestServer(t)
	m := newTestModel(t, srv.URL, config.DeliveryStream)

	_, err := m.conversation.AppendUserTurn("hidden while health is up")
	require.NoError(t, err)
	m.refreshViewport(true)
	m, _ = m.toggleHealth()

	view := m.View()
	assert.NotContains(t, view, "hidden while health is up")
}
