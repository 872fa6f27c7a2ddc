// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saksham-jain177/inferchat/internal/model"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHealth {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.header.View(),
			m.dashboard.View(),
			m.statusBar.View(),
		)
	}

	sections := []string{
		m.header.View(),
		m.viewport.View(),
	}

	if m.spinner.IsActive() {
		sections = append(sections, "  "+m.spinner.View())
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatus())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderInput renders the prompt line, dimmed while a request is in
// flight.
func (m Model) renderInput() string {
	if m.state != StateReady {
		return m.theme.InputPlaceholder.Render("  ... press esc to cancel")
	}
	return m.input.View()
}

// renderStatus renders the status bar, substituting a transient note
// for the shortcut hints when one is active.
func (m Model) renderStatus() string {
	bar := m.statusBar.View()
	if m.statusNote == "" {
		return bar
	}
	note := m.theme.InfoStyle.Render("[i] " + m.statusNote)
	return lipgloss.JoinVertical(lipgloss.Left, note, bar)
}

// =============================================================================
// VIEWPORT CONTENT
// =============================================================================

// refreshViewport re-renders the conversation into the viewport.
// follow pins the view to the bottom, used while a response is
// arriving.
func (m *Model) refreshViewport(follow bool) {
	m.statusBar.SetConversation(m.conversation.TurnCount(), m.conversation.EstimateTokens())
	m.viewport.SetContent(m.renderConversation())
	if follow {
		m.viewport.GotoBottom()
	}
}

// renderConversation renders every turn in insertion order.
func (m *Model) renderConversation() string {
	turns := m.conversation.GetHistory()
	rendered := make([]string, 0, len(turns))

	for i, turn := range turns {
		// The seeded system prompt is configuration, not dialogue.
		if i == 0 && turn.Role == model.RoleSystem {
			continue
		}
		// A stream that failed at open leaves an empty finalized turn;
		// the error turn that follows it carries the explanation.
		if turn.Role == model.RoleAssistant && !turn.IsStreaming && turn.IsEmpty() {
			continue
		}

		content := ""
		if turn.Role == model.RoleAssistant && !turn.IsStreaming {
			content = m.markdown.render(turn.Content)
		}
		rendered = append(rendered, m.turnRenderer.Render(turn, content))
	}

	if len(rendered) == 0 {
		return m.renderWelcome()
	}
	return strings.Join(rendered, "\n\n")
}

// renderWelcome fills the empty viewport before the first exchange.
func (m *Model) renderWelcome() string {
	lines := []string{
		"",
		m.theme.ThinkingText.Render("  Type a message and press enter."),
		m.theme.ShortcutDesc.Render("  /help lists commands, ctrl+h shows server telemetry."),
	}
	return strings.Join(lines, "\n")
}

// lipglossHeight measures rendered height for layout math.
func lipglossHeight(s string) int {
	return lipgloss.Height(s)
}
