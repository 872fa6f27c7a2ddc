// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive conversation view of the TUI.
//
// # Architecture
//
// The view is a single Bubble Tea model. Submissions move the model
// through a small state machine (StateReady -> StateSending or
// StateStreaming -> StateReady); exactly one request is in flight at a
// time and Enter is ignored until the current one settles.
//
// Streaming responses do not re-render per token. The stream command
// pumps fragments into a StreamingBuffer from its own goroutine, and a
// 30fps tick drains the buffer into the open assistant turn on the
// update loop. Completion force-flushes the tail so no tokens are lost.
//
// Esc cancels the in-flight request through cancelManager; partial
// streamed content is kept and the turn is finalized as-is. Failed
// requests surface as error turns in the conversation history, never
// as modal state.
//
// Ctrl+U / Ctrl+D vote on the most recent assistant turn. The local
// vote is recorded synchronously; the backend sync runs as a command
// and its result never changes the local state.
//
// Ctrl+H swaps the conversation for the server telemetry view, which
// polls while mounted and stops when dismissed.
package chat
