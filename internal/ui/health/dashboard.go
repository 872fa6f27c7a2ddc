// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package health provides the server telemetry dashboard for the
// inferchat TUI. It polls the aggregator on a fixed cadence and renders
// the latest snapshot: request counters, cache hit rate, adapter usage,
// and a derived health status.
package health

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/saksham-jain177/inferchat/internal/health"
	"github.com/saksham-jain177/inferchat/internal/ui/styles"
	"github.com/saksham-jain177/inferchat/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// PollTickMsg fires when the poll timer elapses.
type PollTickMsg struct{}

// SnapshotMsg carries the result of one poll.
type SnapshotMsg struct {
	Snapshot *health.Snapshot
	Err      error
}

// =============================================================================
// DASHBOARD MODEL
// =============================================================================

// Dashboard is the bubbletea model for the telemetry view.
type Dashboard struct {
	aggregator *health.Aggregator
	theme      *styles.Theme
	interval   time.Duration

	width  int
	height int

	// active gates the tick loop: once false, a fired tick schedules
	// nothing, so leaving the view tears the timer down.
	active bool
}

// NewDashboard creates a telemetry dashboard polling at the given
// interval. A zero interval uses the default cadence.
func NewDashboard(agg *health.Aggregator, theme *styles.Theme, interval time.Duration) *Dashboard {
	if interval <= 0 {
		interval = health.PollInterval
	}
	return &Dashboard{
		aggregator: agg,
		theme:      theme,
		interval:   interval,
		width:      80,
		height:     24,
	}
}

// SetSize updates the dashboard dimensions.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Start activates the poll loop. It polls immediately so the view does
// not sit empty for a full interval.
func (d *Dashboard) Start() tea.Cmd {
	d.active = true
	return tea.Batch(d.pollCmd(), d.tickCmd())
}

// Stop deactivates the poll loop.
func (d *Dashboard) Stop() {
	d.active = false
}

// Active reports whether the poll loop is running.
func (d *Dashboard) Active() bool {
	return d.active
}

// tickCmd schedules the next poll tick.
func (d *Dashboard) tickCmd() tea.Cmd {
	return tea.Tick(d.interval, func(time.Time) tea.Msg {
		return PollTickMsg{}
	})
}

// pollCmd fetches a snapshot in the background.
func (d *Dashboard) pollCmd() tea.Cmd {
	agg := d.aggregator
	interval := d.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		err := agg.Poll(ctx)
		return SnapshotMsg{Snapshot: agg.Snapshot(), Err: err}
	}
}

// Update handles poll ticks and snapshot results.
func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case PollTickMsg:
		if !d.active {
			return nil
		}
		return tea.Batch(d.pollCmd(), d.tickCmd())
	case SnapshotMsg:
		// Snapshot state lives in the aggregator; the message only
		// triggers a re-render.
		return nil
	}
	return nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the dashboard. A failed poll replaces the metric panel
// with an error view rather than showing stale numbers next to an
// error banner.
func (d *Dashboard) View() string {
	if err := d.aggregator.Err(); err != nil {
		return d.renderError(err)
	}

	snapshot := d.aggregator.Snapshot()
	if snapshot == nil {
		return d.renderWaiting()
	}
	return d.renderSnapshot(snapshot)
}

func (d *Dashboard) renderWaiting() string {
	content := d.theme.HealthTitle.Render("Server Telemetry") + "\n\n" +
		d.theme.HealthLabel.Render("Waiting for first poll...")
	return d.theme.HealthBox.Width(d.boxWidth()).Render(content)
}

func (d *Dashboard) renderError(err error) string {
	title := d.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " Telemetry unavailable")
	body := d.theme.ErrorMessage.Render(err.Error())
	tip := d.theme.ErrorTip.Render("Retrying every " + d.interval.String())
	return d.theme.ErrorBox.Width(d.boxWidth()).Render(title + "\n\n" + body + "\n\n" + tip)
}

func (d *Dashboard) renderSnapshot(s *health.Snapshot) string {
	var b strings.Builder

	b.WriteString(d.theme.HealthTitle.Render("Server Telemetry"))
	b.WriteString("  ")
	b.WriteString(d.statusBadge(s.Status()))
	b.WriteString("\n\n")

	b.WriteString(d.renderCounters(s))
	b.WriteString("\n")
	b.WriteString(d.renderCache(s))

	if len(s.AdapterUsage) > 0 {
		b.WriteString("\n")
		b.WriteString(d.renderAdapterUsage(s))
	}

	b.WriteString("\n")
	b.WriteString(d.theme.HealthLabel.Render("Updated " + s.FetchedAt.Format("15:04:05")))

	return d.theme.HealthBox.Width(d.boxWidth()).Render(b.String())
}

func (d *Dashboard) statusBadge(status health.Status) string {
	switch status {
	case health.StatusOperational:
		return d.theme.HealthOperational.Render(styles.StatusIndicators.Success + " " + status.String())
	case health.StatusDegraded:
		return d.theme.HealthDegraded.Render(styles.StatusIndicators.Error + " " + status.String())
	case health.StatusHighLoad:
		return d.theme.HealthHighLoad.Render(styles.StatusIndicators.Warning + " " + status.String())
	default:
		return d.theme.HealthUnknown.Render(status.String())
	}
}

func (d *Dashboard) renderCounters(s *health.Snapshot) string {
	var b strings.Builder

	b.WriteString(d.row("Active requests", strconv.Itoa(s.ActiveRequests)))
	b.WriteString(d.row("Total requests", util.FormatCount(s.TotalRequests)))
	b.WriteString(d.row("Total errors", util.FormatCount(s.TotalErrors)))
	b.WriteString(d.row("Error rate", util.FormatPercent(s.ErrorRate())))

	return b.String()
}

func (d *Dashboard) renderCache(s *health.Snapshot) string {
	var b strings.Builder

	b.WriteString(d.row("Cache hits", util.FormatCount(s.CacheHits)))
	b.WriteString(d.row("Cache misses", util.FormatCount(s.CacheMisses)))

	rate := s.HitRate()
	bar := d.renderBar(int(rate), 100, 20)
	b.WriteString(d.theme.HealthLabel.Render(util.PadRight("Hit rate", 16)))
	b.WriteString(bar)
	b.WriteString(" ")
	b.WriteString(d.theme.HealthValue.Render(util.FormatPercent(rate)))
	b.WriteString("\n")

	return b.String()
}

// renderAdapterUsage renders a per-adapter call chart, busiest first.
func (d *Dashboard) renderAdapterUsage(s *health.Snapshot) string {
	var b strings.Builder

	b.WriteString(d.theme.HealthValue.Render("Adapter usage"))
	b.WriteString("\n")

	names := make([]string, 0, len(s.AdapterUsage))
	maxCalls := 0
	for name, calls := range s.AdapterUsage {
		names = append(names, name)
		if calls > maxCalls {
			maxCalls = calls
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if s.AdapterUsage[names[i]] != s.AdapterUsage[names[j]] {
			return s.AdapterUsage[names[i]] > s.AdapterUsage[names[j]]
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		calls := s.AdapterUsage[name]
		b.WriteString(d.theme.HealthLabel.Render(util.PadRight(util.TruncateRunes(name, 14), 16)))
		b.WriteString(d.renderBar(calls, maxCalls, 20))
		b.WriteString(" ")
		b.WriteString(d.theme.HealthValue.Render(util.FormatCount(calls)))
		b.WriteString("\n")
	}

	return b.String()
}

func (d *Dashboard) row(label, value string) string {
	return d.theme.HealthLabel.Render(util.PadRight(label, 16)) +
		d.theme.HealthValue.Render(value) + "\n"
}

// renderBar renders a horizontal bar chart scaled to max.
func (d *Dashboard) renderBar(value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	if value < 0 {
		value = 0
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}

	bar := d.theme.HealthBar.Render(strings.Repeat("#", filled))
	empty := d.theme.HealthBarEmpty.Render(strings.Repeat("-", width-filled))
	return bar + empty
}

func (d *Dashboard) boxWidth() int {
	w := d.width - 4
	if w < 44 {
		w = 44
	}
	if w > 72 {
		w = 72
	}
	return w
}
