// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the
// inferchat TUI.
//
// # Components
//
//   - Header: title bar with server address, delivery mode, and
//     connection state
//   - StatusBar: bottom bar with delivery mode, server health,
//     conversation counters, and keyboard shortcuts
//   - Spinner / InlineSpinner: loading indicators
//   - TurnRenderer: styled bubbles for conversation turns, with
//     routing mode badges, vote markers, and generation stats
//
// Components are plain view structs; the chat and health bubbletea
// models own the state and call View() during rendering.
package components
