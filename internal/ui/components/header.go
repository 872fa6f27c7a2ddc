// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the
// inferchat TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saksham-jain177/inferchat/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar at the top of the chat view.
type Header struct {
	Title        string // Main title (default: "inferchat")
	ServerURL    string // Inference server address
	DeliveryMode string // "stream" or "structured"
	Connected    bool   // Whether the last health check succeeded
	Width        int    // Available width
	theme        *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "inferchat",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetServer updates the server address display.
func (h *Header) SetServer(url string) {
	h.ServerURL = url
}

// SetDeliveryMode updates the delivery mode display.
func (h *Header) SetDeliveryMode(mode string) {
	h.DeliveryMode = mode
}

// SetConnected updates the connection indicator.
func (h *Header) SetConnected(connected bool) {
	h.Connected = connected
}

// View renders the header component.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}
	innerWidth := width - 6

	brandStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan)

	accentStyle := lipgloss.NewStyle().
		Foreground(styles.Purple)

	brand := accentStyle.Render("< ") +
		brandStyle.Render(h.Title) +
		accentStyle.Render(" >")

	subtitleParts := []string{}

	if h.ServerURL != "" {
		serverStyle := lipgloss.NewStyle().
			Foreground(styles.TextSecondary)
		subtitleParts = append(subtitleParts, serverStyle.Render(h.ServerURL))
	}

	if h.DeliveryMode != "" {
		modeStyle := lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)
		subtitleParts = append(subtitleParts, modeStyle.Render("["+strings.ToUpper(h.DeliveryMode)+"]"))
	}

	if h.Connected {
		subtitleParts = append(subtitleParts,
			lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Render(styles.StatusIndicators.Active+" online"))
	} else {
		subtitleParts = append(subtitleParts,
			lipgloss.NewStyle().Foreground(styles.TextMuted).Render("offline"))
	}

	subtitle := strings.Join(subtitleParts, " ")

	brandLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Render(brand)

	subtitleLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Foreground(styles.TextMuted).
		Render(subtitle)

	content := lipgloss.JoinVertical(lipgloss.Center, brandLine, subtitleLine)

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Background(styles.SurfaceDim).
		Padding(0, 2).
		Width(width).
		Render(content)
}
