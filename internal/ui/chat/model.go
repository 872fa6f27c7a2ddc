// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive conversation view.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/config"
	"github.com/saksham-jain177/inferchat/internal/feedback"
	"github.com/saksham-jain177/inferchat/internal/health"
	"github.com/saksham-jain177/inferchat/internal/model"
	"github.com/saksham-jain177/inferchat/internal/ui/components"
	healthview "github.com/saksham-jain177/inferchat/internal/ui/health"
	"github.com/saksham-jain177/inferchat/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State is the submission state of the chat view. At most one request
// is in flight: Enter is ignored unless the state is StateReady.
type State int

const (
	StateReady     State = iota // accepting input
	StateSending                // structured call in flight
	StateStreaming              // stream open, tokens arriving
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Configuration snapshot
	cfg *config.Config

	// Conversation
	conversation *model.Conversation

	// Backend
	client *api.Client
	gate   *feedback.Gate

	// In-flight stream
	streamHandle model.StreamHandle
	streamBuffer *StreamingBuffer
	cancelMgr    *cancelManager // pointer: Bubble Tea copies the model on update

	// Server telemetry
	aggregator *health.Aggregator
	dashboard  *healthview.Dashboard
	showHealth bool

	// UI components
	viewport     viewport.Model
	input        textinput.Model
	header       *components.Header
	statusBar    *components.StatusBar
	spinner      components.Spinner
	turnRenderer *components.TurnRenderer

	// Key bindings
	keyMap KeyMap

	// Transient status note shown in place of the shortcut hints
	statusNote   string
	statusNoteID int

	// Markdown rendering of finalized assistant turns
	markdown *markdownRenderer

	// quitting suppresses the final render after ctrl+c
	quitting bool
}

// New creates a chat model wired to the given backend client.
func New(cfg *config.Config, client *api.Client, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	agg := health.NewAggregator(client)

	header := components.NewHeader(theme)
	header.SetServer(client.BaseURL())
	header.SetDeliveryMode(cfg.Chat.DeliveryMode)

	statusBar := components.NewStatusBar(theme)
	statusBar.SetDeliveryMode(cfg.Chat.DeliveryMode)

	renderer := components.NewTurnRenderer(theme)
	renderer.SetShowStats(cfg.UI.ShowStats)
	renderer.SetShowBadge(cfg.UI.ShowModeBadges)

	return Model{
		state:        StateReady,
		theme:        theme,
		cfg:          cfg,
		conversation: model.NewConversation(cfg.Chat.SystemPrompt),
		client:       client,
		gate:         feedback.NewGate(client),
		streamBuffer: NewStreamingBuffer(),
		cancelMgr:    newCancelManager(),
		aggregator:   agg,
		dashboard:    healthview.NewDashboard(agg, theme, time.Duration(cfg.Server.HealthPollSecs)*time.Second),
		viewport:     vp,
		input:        ti,
		header:       header,
		statusBar:    statusBar,
		spinner:      components.NewThinkingSpinner(),
		turnRenderer: renderer,
		keyMap:       DefaultKeyMap(),
		markdown:     newMarkdownRenderer(cfg.UI.Markdown),
	}
}

// Init implements tea.Model. It kicks off a reachability probe so the
// header can show connection state.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.checkServerCmd(),
	)
}

// Conversation exposes the backing store, mainly for tests.
func (m Model) Conversation() *model.Conversation {
	return m.conversation
}

// State returns the current submission state.
func (m Model) State() State {
	return m.state
}

// HealthVisible reports whether the telemetry overlay is mounted.
func (m Model) HealthVisible() bool {
	return m.showHealth
}

// SetConfig swaps in a reloaded configuration. Called from the watcher
// via a message so the change lands on the update goroutine.
func (m *Model) SetConfig(cfg *config.Config) {
	m.cfg = cfg
	m.header.SetServer(cfg.Server.BaseURL)
	m.header.SetDeliveryMode(cfg.Chat.DeliveryMode)
	m.statusBar.SetDeliveryMode(cfg.Chat.DeliveryMode)
	m.turnRenderer.SetShowStats(cfg.UI.ShowStats)
	m.turnRenderer.SetShowBadge(cfg.UI.ShowModeBadges)
	m.markdown = newMarkdownRenderer(cfg.UI.Markdown)
}

// setSize propagates a terminal resize to every component.
func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.turnRenderer.SetWidth(width)
	m.dashboard.SetSize(width, height)
	m.markdown.setWidth(width)

	headerHeight := lipglossHeight(m.header.View())
	inputHeight := 1
	statusHeight := lipglossHeight(m.statusBar.View())

	vpHeight := height - headerHeight - inputHeight - statusHeight - 1
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.Width = width - 4
	m.refreshViewport(false)
}
