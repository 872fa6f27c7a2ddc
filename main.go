// inferchat - interactive terminal client for an adaptive inference server.
//
// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/cli"
	"github.com/saksham-jain177/inferchat/internal/config"
	"github.com/saksham-jain177/inferchat/internal/logging"
	"github.com/saksham-jain177/inferchat/internal/ui/chat"
	"github.com/saksham-jain177/inferchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		cli.PrintUsage()
		os.Exit(cli.ExitUsageError)
	}
}

// configReloadedMsg carries a freshly reloaded config from the file
// watcher goroutine into the Bubble Tea update loop.
type configReloadedMsg struct {
	cfg *config.Config
}

// appModel adapts chat.Model to the tea.Model interface and handles
// messages that concern the whole program rather than the chat view.
type appModel struct {
	chat chat.Model
}

func (a appModel) Init() tea.Cmd {
	return a.chat.Init()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if reload, ok := msg.(configReloadedMsg); ok {
		a.chat.SetConfig(reload.cfg)
		return a, nil
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a appModel) View() string {
	return a.chat.View()
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.Default()
	}

	// CLI flags override the config file for this run only.
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	if args.Mode != "" {
		cfg.Chat.DeliveryMode = args.Mode
	}
	config.SetGlobal(cfg)

	logCloser, err := logging.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	} else {
		defer logCloser.Close()
	}

	timeout := time.Duration(cfg.Server.TimeoutSecs) * time.Second
	client := api.NewClient(cfg.Server.BaseURL).WithTimeout(timeout)
	theme := styles.NewTheme()

	p := tea.NewProgram(
		appModel{chat: chat.New(cfg, client, theme)},
		tea.WithAltScreen(),
	)

	// Reload config edits without restarting; the watcher goroutine
	// hands the new config to the update loop via p.Send.
	watcher, err := config.NewWatcher(func(reloaded *config.Config) {
		config.SetGlobal(reloaded)
		p.Send(configReloadedMsg{cfg: reloaded})
	})
	if err == nil {
		if werr := watcher.Watch(); werr == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitGeneralError)
	}
}
