// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saksham-jain177/inferchat/internal/health"
	"github.com/saksham-jain177/inferchat/internal/ui/styles"
	"github.com/saksham-jain177/inferchat/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current submission state shown in the bar.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusStreaming
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusStreaming:
		return "Streaming..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status, distinct without
// color for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusSending:
		return styles.StatusIndicators.Pending
	case StatusStreaming:
		return "~"
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar of the chat view.
type StatusBar struct {
	DeliveryMode  string        // "stream" or "structured"
	TurnCount     int           // Turns in the conversation
	TokenEstimate int           // Rough token count of the history
	Health        health.Status // Last known server health
	Status        Status        // Current submission state
	Width         int           // Available width
	ShowShortcuts bool          // Show keyboard shortcuts
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		DeliveryMode:  "stream",
		Health:        health.StatusUnknown,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetDeliveryMode updates the delivery mode display.
func (s *StatusBar) SetDeliveryMode(mode string) {
	s.DeliveryMode = mode
}

// SetConversation updates the conversation counters.
func (s *StatusBar) SetConversation(turns, tokenEstimate int) {
	s.TurnCount = turns
	s.TokenEstimate = tokenEstimate
}

// SetHealth updates the server health display.
func (s *StatusBar) SetHealth(status health.Status) {
	s.Health = status
}

// SetStatus updates the submission state.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: [MODE] health status
func (s *StatusBar) viewNarrow() string {
	modeChar := "?"
	if s.DeliveryMode != "" {
		modeChar = strings.ToUpper(s.DeliveryMode[:1])
	}
	modeStyle := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	mode := modeStyle.Render("[" + modeChar + "]")

	healthText := s.healthStyle().Render(s.healthIcon())

	statusStyle := s.statusStyle()
	statusText := statusStyle.Render(s.Status.Icon())

	sep := " "
	result := mode + sep + healthText + sep + statusText

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewWide renders the full status bar.
// Format: MODE | health | N turns ~M tok | Status        shortcuts
func (s *StatusBar) viewWide() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	leftParts := []string{}

	modeStyle := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	leftParts = append(leftParts, modeStyle.Render(strings.ToUpper(s.DeliveryMode)))

	leftParts = append(leftParts, s.healthStyle().Render(s.healthIcon()+" "+s.Health.String()))

	convStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	leftParts = append(leftParts, convStyle.Render(
		strconv.Itoa(s.TurnCount)+" turns ~"+util.FormatCount(s.TokenEstimate)+" tok"))

	leftParts = append(leftParts, s.statusStyle().Render(s.Status.String()))

	leftSection := strings.Join(leftParts, sep)

	rightSection := ""
	if s.ShowShortcuts {
		rightSection = s.renderShortcuts()
	}

	leftWidth := lipgloss.Width(leftSection)
	rightWidth := lipgloss.Width(rightSection)
	spacing := s.Width - leftWidth - rightWidth - 4
	if spacing < 1 {
		spacing = 1
	}

	result := leftSection + strings.Repeat(" ", spacing) + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// renderShortcuts renders the keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	shortcuts := []struct{ key, desc string }{
		{"enter", "send"},
		{"esc", "cancel"},
		{"ctrl+u/d", "vote"},
		{"ctrl+h", "health"},
		{"ctrl+c", "quit"},
	}

	parts := make([]string, 0, len(shortcuts))
	for _, sc := range shortcuts {
		parts = append(parts, keyStyle.Render(sc.key)+descStyle.Render(":"+sc.desc))
	}
	return strings.Join(parts, " ")
}

func (s *StatusBar) healthIcon() string {
	switch s.Health {
	case health.StatusOperational:
		return styles.StatusIndicators.Success
	case health.StatusDegraded:
		return styles.StatusIndicators.Error
	case health.StatusHighLoad:
		return styles.StatusIndicators.Warning
	default:
		return styles.StatusIndicators.Pending
	}
}

func (s *StatusBar) healthStyle() lipgloss.Style {
	switch s.Health {
	case health.StatusOperational:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
	case health.StatusDegraded:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	case health.StatusHighLoad:
		return lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	case StatusStreaming, StatusSending:
		return lipgloss.NewStyle().Foreground(styles.Amber)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextSecondary)
	}
}
