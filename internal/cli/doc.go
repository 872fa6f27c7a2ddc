// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface: argument
// parsing, the ask/chat/status/config handlers, and the shared
// terminal plumbing (TTY detection, styling, JSON output).
//
// Handlers return errors; display and exit-code selection happen once
// in the dispatcher. Colored output is automatically disabled for
// piped output and under NO_COLOR.
package cli
