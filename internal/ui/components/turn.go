// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saksham-jain177/inferchat/internal/model"
	"github.com/saksham-jain177/inferchat/internal/ui/styles"
	"github.com/saksham-jain177/inferchat/internal/util"
)

// =============================================================================
// TURN RENDERER
// =============================================================================

// TurnRenderer renders conversation turns as styled bubbles.
type TurnRenderer struct {
	theme     *styles.Theme
	width     int
	showStats bool
	showBadge bool
}

// NewTurnRenderer creates a turn renderer.
func NewTurnRenderer(theme *styles.Theme) *TurnRenderer {
	return &TurnRenderer{
		theme:     theme,
		width:     80,
		showStats: true,
		showBadge: true,
	}
}

// SetWidth updates the available width.
func (r *TurnRenderer) SetWidth(width int) {
	r.width = width
}

// SetShowStats toggles the per-turn generation stats line.
func (r *TurnRenderer) SetShowStats(show bool) {
	r.showStats = show
}

// SetShowBadge toggles the routing mode badge.
func (r *TurnRenderer) SetShowBadge(show bool) {
	r.showBadge = show
}

// Render renders a single turn. Assistant turns carry an optional mode
// badge, feedback marker, and stats footer; content may already be
// markdown-rendered by the caller.
func (r *TurnRenderer) Render(turn *model.Turn, content string) string {
	if content == "" {
		content = turn.GetDisplayContent()
	}

	maxBubble := r.width - 8
	if maxBubble < 20 {
		maxBubble = 20
	}

	switch turn.Role {
	case model.RoleUser:
		return r.renderUser(content, maxBubble)
	case model.RoleAssistant:
		return r.renderAssistant(turn, content, maxBubble)
	case model.RoleError:
		return r.renderError(content, maxBubble)
	default:
		return r.renderSystem(content, maxBubble)
	}
}

func (r *TurnRenderer) renderUser(content string, maxWidth int) string {
	label := lipgloss.NewStyle().
		Foreground(styles.UserBubbleBorder).
		Bold(true).
		Render("You")

	bubble := r.theme.UserBubble.MaxWidth(maxWidth).Render(content)
	block := label + "\n" + bubble

	// Right-align user turns.
	return lipgloss.NewStyle().
		Width(r.width).
		Align(lipgloss.Right).
		Render(block)
}

func (r *TurnRenderer) renderAssistant(turn *model.Turn, content string, maxWidth int) string {
	headerParts := []string{
		lipgloss.NewStyle().
			Foreground(styles.AssistantBubbleBorder).
			Bold(true).
			Render("Assistant"),
	}

	if r.showBadge && turn.Origin == model.OriginStructured && turn.Meta != nil {
		info, _ := model.GetModeInfo(turn.Meta.Mode)
		badge := r.theme.ModeBadge(turn.Meta.Mode).Render(info.DisplayBadge())
		headerParts = append(headerParts, badge)
		if turn.Meta.ContextUsed {
			headerParts = append(headerParts,
				lipgloss.NewStyle().Foreground(styles.TextMuted).Render("ctx"))
		}
	}

	if marker := r.feedbackMarker(turn); marker != "" {
		headerParts = append(headerParts, marker)
	}

	header := strings.Join(headerParts, " ")
	bubble := r.theme.AssistantBubble.MaxWidth(maxWidth).Render(content)

	block := header + "\n" + bubble

	if r.showStats && !turn.IsStreaming && turn.TokenCount > 0 {
		block += "\n" + r.renderStats(turn)
	}

	return block
}

func (r *TurnRenderer) renderSystem(content string, maxWidth int) string {
	return r.theme.SystemBubble.MaxWidth(maxWidth).Render(content)
}

func (r *TurnRenderer) renderError(content string, maxWidth int) string {
	title := r.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " Error")
	body := r.theme.ErrorMessage.Render(content)
	return r.theme.ErrorBox.MaxWidth(maxWidth).Render(title + "\n" + body)
}

// feedbackMarker renders the vote state for an assistant turn.
func (r *TurnRenderer) feedbackMarker(turn *model.Turn) string {
	switch turn.Feedback {
	case model.FeedbackUp:
		return r.theme.VoteUp.Render("+1")
	case model.FeedbackDown:
		return r.theme.VoteDown.Render("-1")
	default:
		return ""
	}
}

// renderStats renders the generation statistics footer.
func (r *TurnRenderer) renderStats(turn *model.Turn) string {
	label := r.theme.StatsLabel
	value := r.theme.StatsValue

	parts := []string{
		label.Render("tokens ") + value.Render(util.FormatCount(turn.TokenCount)),
	}
	if turn.TTFT > 0 {
		parts = append(parts, label.Render("ttft ")+value.Render(util.FormatDuration(turn.TTFT)))
	}
	if turn.TotalDuration > 0 {
		parts = append(parts, label.Render("total ")+value.Render(util.FormatDuration(turn.TotalDuration)))
	}
	if turn.TokensPerSec > 0 {
		parts = append(parts, value.Render(util.FormatTokensPerSec(turn.TokensPerSec)))
	}

	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("  " + strings.Join(parts, "  "))
}
