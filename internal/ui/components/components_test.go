// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/saksham-jain177/inferchat/internal/health"
	"github.com/saksham-jain177/inferchat/internal/model"
	"github.com/saksham-jain177/inferchat/internal/ui/styles"
)

func TestHeaderView(t *testing.T) {
	h := NewHeader(styles.NewTheme())
	h.SetWidth(80)
	h.SetServer("http://127.0.0.1:8000")
	h.SetDeliveryMode("stream")
	h.SetConnected(true)

	view := h.View()
	if !strings.Contains(view, "inferchat") {
		t.Error("header should contain the title")
	}
	if !strings.Contains(view, "STREAM") {
		t.Error("header should show the delivery mode")
	}
	if !strings.Contains(view, "online") {
		t.Error("header should show connection state")
	}
}

func TestStatusBarWide(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetWidth(120)
	sb.SetDeliveryMode("structured")
	sb.SetConversation(5, 1200)
	sb.SetHealth(health.StatusOperational)
	sb.SetStatus(StatusReady)

	view := sb.View()
	if !strings.Contains(view, "STRUCTURED") {
		t.Error("status bar should show the delivery mode")
	}
	if !strings.Contains(view, "Operational") {
		t.Error("status bar should show server health")
	}
	if !strings.Contains(view, "5 turns") {
		t.Error("status bar should show the turn count")
	}
	if !strings.Contains(view, "Ready") {
		t.Error("status bar should show the submission state")
	}
}

func TestStatusBarNarrow(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetWidth(40)
	sb.SetDeliveryMode("stream")
	sb.SetStatus(StatusStreaming)

	view := sb.View()
	if !strings.Contains(view, "[S]") {
		t.Errorf("narrow status bar should show compact mode, got %q", view)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusSending, "Sending..."},
		{StatusStreaming, "Streaming..."},
		{StatusError, "Error"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	s := NewThinkingSpinner()
	if s.IsActive() {
		t.Error("spinner should start inactive")
	}
	if s.View() != "" {
		t.Error("inactive spinner should render nothing")
	}

	cmd := s.Start()
	if cmd == nil {
		t.Error("Start() should return a tick command")
	}
	if !s.IsActive() {
		t.Error("spinner should be active after Start")
	}
	if !strings.Contains(s.View(), "Thinking") {
		t.Error("spinner view should show the message")
	}

	s.Stop()
	if s.IsActive() {
		t.Error("spinner should be inactive after Stop")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{65 * time.Second, "1m 5s"},
		{0, "0s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTurnRendererUser(t *testing.T) {
	r := NewTurnRenderer(styles.NewTheme())
	r.SetWidth(80)

	turn := model.NewUserTurn("what is quantization")
	view := r.Render(turn, "")
	if !strings.Contains(view, "You") {
		t.Error("user turn should carry the You label")
	}
	if !strings.Contains(view, "what is quantization") {
		t.Error("user turn should contain its content")
	}
}

func TestTurnRendererAssistantBadgeAndVote(t *testing.T) {
	r := NewTurnRenderer(styles.NewTheme())
	r.SetWidth(80)

	turn := model.NewStructuredAssistantTurn("reducing numeric precision", model.TurnMeta{
		Mode:        "adapter",
		Domain:      "ml",
		ContextUsed: true,
	})
	turn.SetFeedback(model.FeedbackUp)

	view := r.Render(turn, "")
	if !strings.Contains(view, "Assistant") {
		t.Error("assistant turn should carry the Assistant label")
	}
	if !strings.Contains(view, "LoRA") {
		t.Error("structured turn should show its mode badge")
	}
	if !strings.Contains(view, "ctx") {
		t.Error("context-used turns should show the ctx marker")
	}
	if !strings.Contains(view, "+1") {
		t.Error("upvoted turn should show the vote marker")
	}
}

func TestTurnRendererStreamedTurnHasNoBadge(t *testing.T) {
	r := NewTurnRenderer(styles.NewTheme())
	r.SetWidth(80)

	turn := model.NewStreamingAssistantTurn()
	turn.AppendToken("partial")

	view := r.Render(turn, "")
	if strings.Contains(view, "LoRA") || strings.Contains(view, "Base") {
		t.Error("streamed turns carry no routing metadata and no badge")
	}
}

func TestTurnRendererError(t *testing.T) {
	r := NewTurnRenderer(styles.NewTheme())
	r.SetWidth(80)

	turn := model.NewErrorTurn("server unreachable")
	view := r.Render(turn, "")
	if !strings.Contains(view, "Error") {
		t.Error("error turn should carry the Error title")
	}
	if !strings.Contains(view, "server unreachable") {
		t.Error("error turn should contain the message")
	}
}
