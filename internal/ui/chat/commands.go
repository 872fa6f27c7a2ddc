// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/saksham-jain177/inferchat/internal/config"
	"github.com/saksham-jain177/inferchat/internal/model"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// runCommand executes a slash command typed into the input field.
func (m Model) runCommand(text string) (Model, tea.Cmd) {
	parts := strings.Fields(text)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/clear":
		return m.cmdClear()
	case "/mode":
		return m.cmdMode(args)
	case "/modes":
		return m.cmdModes()
	case "/health":
		return m.toggleHealth()
	case "/help":
		return m.cmdHelp()
	case "/quit", "/exit":
		m.quitting = true
		m.cancelMgr.cancel()
		return m, tea.Quit
	default:
		return m.setStatusNote(fmt.Sprintf("Unknown command: %s (try /help)", cmd))
	}
}

// cmdClear starts a fresh conversation with the same system prompt.
func (m Model) cmdClear() (Model, tea.Cmd) {
	if m.state != StateReady {
		return m.setStatusNote("Cannot clear while a response is in progress")
	}
	m.conversation = model.NewConversation(m.cfg.Chat.SystemPrompt)
	m.refreshViewport(true)
	return m.setStatusNote("Conversation cleared")
}

// cmdMode switches the delivery mode for subsequent submissions.
func (m Model) cmdMode(args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		return m.setStatusNote(fmt.Sprintf("Delivery mode: %s (use /mode stream|structured)", m.cfg.Chat.DeliveryMode))
	}
	mode := strings.ToLower(args[0])
	if mode != config.DeliveryStream && mode != config.DeliveryStructured {
		return m.setStatusNote(fmt.Sprintf("Unknown mode %q: use stream or structured", args[0]))
	}
	m.cfg.Chat.DeliveryMode = mode
	m.header.SetDeliveryMode(mode)
	m.statusBar.SetDeliveryMode(mode)
	return m.setStatusNote("Delivery mode: " + mode)
}

// cmdModes lists the routing modes the server may report.
func (m Model) cmdModes() (Model, tea.Cmd) {
	ids := model.ModeIDs()
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("Routing modes the server may report:\n")
	for _, id := range ids {
		info, _ := model.GetModeInfo(id)
		fmt.Fprintf(&b, "  [%s] %s - %s\n", info.DisplayBadge(), info.Name, info.Description)
	}
	m.appendSystemTurn(strings.TrimRight(b.String(), "\n"))
	m.refreshViewport(true)
	return m, nil
}

// cmdHelp appends a system turn describing shortcuts and commands.
func (m Model) cmdHelp() (Model, tea.Cmd) {
	help := strings.Join([]string{
		"Commands:",
		"  /clear            start a new conversation",
		"  /mode [m]         show or set delivery mode (stream, structured)",
		"  /modes            list server routing modes",
		"  /health           toggle the server telemetry view",
		"  /quit             exit",
		"",
		"Shortcuts:",
		"  enter             send",
		"  esc               cancel the in-flight response",
		"  ctrl+u / ctrl+d   vote on the last response",
		"  ctrl+h            toggle the server telemetry view",
		"  pgup / pgdown     scroll history",
		"  ctrl+c            quit",
	}, "\n")
	m.appendSystemTurn(help)
	m.refreshViewport(true)
	return m, nil
}

// appendSystemTurn adds an informational turn to the history.
func (m *Model) appendSystemTurn(text string) {
	m.conversation.AppendSystemTurn(text)
}
