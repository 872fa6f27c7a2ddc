// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders finalized assistant turns through glamour.
// Streaming turns are rendered raw: re-running the markdown pipeline on
// every flush would dominate the frame budget, and half-open fences
// render badly anyway.
type markdownRenderer struct {
	enabled  bool
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(enabled bool) *markdownRenderer {
	return &markdownRenderer{enabled: enabled, width: 80}
}

// setWidth rebuilds the renderer for a new wrap width.
func (r *markdownRenderer) setWidth(width int) {
	wrap := width - 10
	if wrap < 20 {
		wrap = 20
	}
	if wrap == r.width && r.renderer != nil {
		return
	}
	r.width = wrap
	r.renderer = nil
}

// render converts markdown to styled terminal output. On any failure
// the raw text is returned unchanged.
func (r *markdownRenderer) render(content string) string {
	if !r.enabled || content == "" {
		return content
	}
	if r.renderer == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.width),
		)
		if err != nil {
			return content
		}
		r.renderer = renderer
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
