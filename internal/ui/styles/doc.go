// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the inferchat TUI.

This package defines the color palette and themed Lip Gloss styles used
throughout the application. All colors use AdaptiveColor for automatic
light/dark terminal detection.

# Color System (colors.go)

Primary accents:

  - Purple - primary accent for assistant turns and selections
  - Cyan - brand color for info, commands, and user highlights
  - Emerald - success states and operational health
  - Amber - warnings and high-load health
  - Rose - errors and degraded health

Turn bubbles and UI elements use semantic color tokens:

	UserBubbleBg      - Background for user turns
	AssistantBubbleBg - Background for assistant turns
	SystemBubbleBg    - Background for system turns

Routing mode badges get their own colors (BadgeAdapter, BadgeRetrieval,
BadgeReasoning, BadgeBase) so a glance at a turn shows how the server
answered it.

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}

	badge := theme.ModeBadge("adapter")
	status := theme.HealthOperational

# Usage Example

	import "github.com/saksham-jain177/inferchat/internal/ui/styles"

	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)
*/
package styles
