// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/saksham-jain177/inferchat/internal/model"
	"github.com/saksham-jain177/inferchat/internal/ui/components"
	healthview "github.com/saksham-jain177/inferchat/internal/ui/health"
)

// statusNoteDuration is how long a transient status note stays visible.
const statusNoteDuration = 4 * time.Second

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartMsg:
		return m, nil

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StructuredReplyMsg:
		return m.handleStructuredReply(msg)

	case ServerStatusMsg:
		m.header.SetConnected(msg.Reachable)
		return m, nil

	case VoteSyncedMsg:
		return m, nil

	case StatusNoteMsg:
		return m.setStatusNote(msg.Text)

	case clearStatusNoteMsg:
		if msg.id == m.statusNoteID {
			m.statusNote = ""
		}
		return m, nil

	case healthview.PollTickMsg, healthview.SnapshotMsg:
		cmd := m.dashboard.Update(msg)
		m.statusBar.SetHealth(m.aggregator.Status())
		return m, cmd
	}

	// Spinner animation frames and input blink
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.quitting = true
		m.cancelMgr.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Health):
		return m.toggleHealth()

	case key.Matches(msg, m.keyMap.Cancel):
		if m.showHealth {
			return m.toggleHealth()
		}
		return m.cancelInFlight()

	case key.Matches(msg, m.keyMap.VoteUp):
		return m.castVote(model.FeedbackUp)

	case key.Matches(msg, m.keyMap.VoteDown):
		return m.castVote(model.FeedbackDown)

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit sends the current input. Ignored while a request is in flight
// or when the telemetry overlay has focus.
func (m Model) submit() (Model, tea.Cmd) {
	if m.showHealth {
		return m, nil
	}
	if m.state != StateReady {
		return m.setStatusNote("A response is already in progress")
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		m.input.SetValue("")
		return m.runCommand(text)
	}

	if _, err := m.conversation.AppendUserTurn(text); err != nil {
		return m, nil
	}
	m.input.SetValue("")
	m.refreshViewport(true)

	if m.cfg.Chat.DeliveryMode == "structured" {
		m.state = StateSending
		m.statusBar.SetStatus(components.StatusSending)
		return m, tea.Batch(m.spinner.Start(), m.structuredCmd(text))
	}

	m.state = StateStreaming
	m.statusBar.SetStatus(components.StatusStreaming)
	m.streamBuffer.Reset()
	m.streamHandle = m.conversation.BeginAssistantStream()
	return m, tea.Batch(
		m.spinner.Start(),
		m.streamCmd(m.streamHandle, text),
		streamTickCmd(),
	)
}

// structuredCmd issues the single-shot inference call.
func (m Model) structuredCmd(prompt string) tea.Cmd {
	client := m.client
	timeout := time.Duration(m.cfg.Server.TimeoutSecs) * time.Second
	cancelMgr := m.cancelMgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		cancelMgr.set(cancel)
		defer cancel()

		start := time.Now()
		resp, err := client.InferAdaptive(ctx, prompt)
		return StructuredReplyMsg{
			Response: resp,
			Elapsed:  time.Since(start),
			Err:      err,
		}
	}
}

// streamCmd opens the token stream and pumps fragments into the
// buffer. It blocks in its own goroutine until the stream ends; the
// update loop drains the buffer on stream ticks.
func (m Model) streamCmd(handle model.StreamHandle, prompt string) tea.Cmd {
	client := m.client
	buffer := m.streamBuffer
	cancelMgr := m.cancelMgr
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		cancelMgr.set(cancel)
		defer cancel()

		stats := model.NewStatistics()
		tokenCount := 0
		err := client.InferStream(ctx, prompt, func(token string) {
			if tokenCount == 0 {
				stats.RecordFirstToken()
			}
			tokenCount++
			buffer.Write(token)
		})
		stats.Finalize(tokenCount)

		return StreamCompleteMsg{Handle: handle, Stats: stats, Err: err}
	}
}

// checkServerCmd probes the health endpoint once.
func (m Model) checkServerCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := client.CheckRunning(ctx)
		return ServerStatusMsg{Reachable: err == nil, Err: err}
	}
}

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

// handleStreamTick drains buffered tokens into the open turn and
// schedules the next tick. A tick that fires after the stream closed
// schedules nothing, which is how the loop tears down.
func (m Model) handleStreamTick() (Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}
	if chunk, ok := m.streamBuffer.Flush(); ok {
		m.conversation.AppendStreamChunk(m.streamHandle, chunk)
		m.refreshViewport(true)
	}
	return m, streamTickCmd()
}

// handleStreamComplete finalizes the streaming turn, drains any tail
// tokens, and surfaces errors into the conversation history.
func (m Model) handleStreamComplete(msg StreamCompleteMsg) (Model, tea.Cmd) {
	m.cancelMgr.clear()

	if tail := m.streamBuffer.ForceFlush(); tail != "" {
		m.conversation.AppendStreamChunk(msg.Handle, tail)
	}
	m.conversation.FinalizeStream(msg.Handle, msg.Stats)

	m.state = StateReady
	m.streamHandle = ""
	m.spinner.Stop()
	m.statusBar.SetStatus(components.StatusReady)

	var cmd tea.Cmd
	switch {
	case msg.Err == nil:
		// done

	case errors.Is(msg.Err, context.Canceled):
		// Partial content stays in the finalized turn.
		m, cmd = m.setStatusNote("Generation cancelled")

	default:
		m.conversation.AppendErrorTurn(friendlyError(msg.Err, m.client.BaseURL()))
		m.statusBar.SetStatus(components.StatusError)
	}

	m.refreshViewport(true)
	return m, cmd
}

// handleStructuredReply appends the completed answer or an error turn.
func (m Model) handleStructuredReply(msg StructuredReplyMsg) (Model, tea.Cmd) {
	m.cancelMgr.clear()
	m.state = StateReady
	m.spinner.Stop()
	m.statusBar.SetStatus(components.StatusReady)

	var cmd tea.Cmd
	switch {
	case msg.Err == nil:
		m.conversation.CompleteStructuredTurn(msg.Response.Text(), model.TurnMeta{
			Mode:        msg.Response.Mode,
			Domain:      msg.Response.Domain,
			ContextUsed: msg.Response.ContextUsed,
		})

	case errors.Is(msg.Err, context.Canceled):
		m, cmd = m.setStatusNote("Request cancelled")

	default:
		m.conversation.AppendErrorTurn(friendlyError(msg.Err, m.client.BaseURL()))
		m.statusBar.SetStatus(components.StatusError)
	}

	m.refreshViewport(true)
	return m, cmd
}

// cancelInFlight aborts the current request, if any.
func (m Model) cancelInFlight() (Model, tea.Cmd) {
	if m.state == StateReady {
		return m, nil
	}
	if !m.cancelMgr.cancel() {
		return m, nil
	}
	// Completion handling runs when the cancelled command returns its
	// StreamCompleteMsg / StructuredReplyMsg.
	return m, nil
}

// =============================================================================
// VOTING
// =============================================================================

// castVote records a thumbs rating on the most recent assistant turn.
// The local vote lands immediately; the backend sync runs as a command.
func (m Model) castVote(direction model.Feedback) (Model, tea.Cmd) {
	turn := m.conversation.GetLastAssistantTurn()
	if turn == nil || turn.IsStreaming {
		return m, nil
	}
	index := m.conversation.IndexOf(turn.ID)

	if !m.conversation.CastVote(index, direction) {
		return m.setStatusNote("Already voted on this response")
	}
	m.refreshViewport(false)

	gate := m.gate
	conv := m.conversation
	turnID := turn.ID
	noteModel, noteCmd := m.setStatusNote(voteNote(direction))
	syncCmd := func() tea.Msg {
		gate.SyncVote(context.Background(), conv, index, direction)
		return VoteSyncedMsg{TurnID: turnID}
	}
	return noteModel, tea.Batch(noteCmd, syncCmd)
}

func voteNote(direction model.Feedback) string {
	if direction == model.FeedbackUp {
		return "Feedback recorded: +1"
	}
	return "Feedback recorded: -1"
}

// =============================================================================
// HEALTH OVERLAY
// =============================================================================

// toggleHealth mounts or unmounts the telemetry overlay. Mounting
// starts the poll loop; unmounting stops it and discards the snapshot.
func (m Model) toggleHealth() (Model, tea.Cmd) {
	if m.showHealth {
		m.showHealth = false
		m.dashboard.Stop()
		m.aggregator.Reset()
		m.statusBar.SetHealth(m.aggregator.Status())
		return m, nil
	}
	m.showHealth = true
	return m, m.dashboard.Start()
}

// =============================================================================
// STATUS NOTES
// =============================================================================

// setStatusNote displays a transient note and schedules its removal.
func (m Model) setStatusNote(text string) (Model, tea.Cmd) {
	m.statusNote = text
	m.statusNoteID++
	id := m.statusNoteID
	return m, tea.Tick(statusNoteDuration, func(time.Time) tea.Msg {
		return clearStatusNoteMsg{id: id}
	})
}
