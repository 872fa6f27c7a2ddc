// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL chat command handler.
//
// Handles "inferchat chat", a line-oriented alternative to the TUI for
// dumb terminals and quick sessions. Arrow keys navigate input
// history, which persists across sessions.
//
// Interactive commands:
//   /help           Show available commands
//   /clear          Start a new conversation
//   /mode [m]       Show or set delivery mode
//   /history        Show the conversation so far
//   /quit           Exit chat
//   Ctrl+C          Cancel current generation
//   Ctrl+D          Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/config"
	"github.com/saksham-jain177/inferchat/internal/model"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// chatInput provides line editing and persistent history for the REPL.
type chatInput struct {
	line        *liner.State
	historyFile string
}

func newChatInput() *chatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	ci := &chatInput{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	ci.loadHistory()
	return ci
}

func (c *chatInput) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// readInput reads one line, recording non-empty input in history.
func (c *chatInput) readInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *chatInput) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

func (c *chatInput) close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// chatSession holds the state for one REPL run.
type chatSession struct {
	cfg          *config.Config
	client       *api.Client
	conversation *model.Conversation
	mode         string
	quiet        bool
	startTime    time.Time
}

// HandleChatCommand implements "inferchat chat".
func HandleChatCommand(args Args) error {
	if !IsTTY() {
		return errors.New("chat requires an interactive terminal; use 'inferchat ask' for piped input")
	}

	cfg := config.Global()
	session := &chatSession{
		cfg:          cfg,
		client:       newClient(cfg, args),
		conversation: model.NewConversation(cfg.Chat.SystemPrompt),
		mode:         deliveryMode(cfg, args),
		quiet:        args.Quiet,
		startTime:    time.Now(),
	}

	input := newChatInput()
	defer input.close()

	if !args.Quiet {
		session.printWelcome()
	}

	for {
		text, err := input.readInput("> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}
			return err
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := session.runCommand(text); quit {
				break
			}
			continue
		}

		session.ask(text)
	}

	if !args.Quiet {
		session.printSummary()
	}
	return nil
}

// ask sends one exchange, streaming or structured per the session mode.
func (s *chatSession) ask(text string) {
	if _, err := s.conversation.AppendUserTurn(text); err != nil {
		return
	}

	// Ctrl+C cancels the generation, not the session.
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.TimeoutSecs)*time.Second)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if s.mode == config.DeliveryStructured {
		s.askStructured(ctx, text)
		return
	}
	s.askStream(ctx, text)
}

func (s *chatSession) askStream(ctx context.Context, text string) {
	handle := s.conversation.BeginAssistantStream()
	err := s.client.InferStream(ctx, text, func(token string) {
		s.conversation.AppendStreamChunk(handle, token)
		fmt.Print(token)
	})
	fmt.Println()
	s.conversation.FinalizeStream(handle, nil)

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		fmt.Println(DimStyle.Render("(cancelled)"))
	default:
		s.conversation.AppendErrorTurn(err.Error())
		fmt.Println(ErrorStyle.Render("[ERROR]") + " " + err.Error())
	}
}

func (s *chatSession) askStructured(ctx context.Context, text string) {
	resp, err := s.client.InferAdaptive(ctx, text)
	if err != nil {
		s.conversation.AppendErrorTurn(err.Error())
		if errors.Is(err, context.Canceled) {
			fmt.Println(DimStyle.Render("(cancelled)"))
			return
		}
		fmt.Println(ErrorStyle.Render("[ERROR]") + " " + err.Error())
		return
	}

	s.conversation.CompleteStructuredTurn(resp.Text(), model.TurnMeta{
		Mode:        resp.Mode,
		Domain:      resp.Domain,
		ContextUsed: resp.ContextUsed,
	})
	displayResponse(resp.Text())

	if !s.quiet {
		info, _ := model.GetModeInfo(resp.Mode)
		fmt.Println(DimStyle.Render(fmt.Sprintf("[%s] %s", info.DisplayBadge(), info.Name)))
	}
}

// runCommand executes a slash command. Returns true when the session
// should end.
func (s *chatSession) runCommand(text string) bool {
	parts := strings.Fields(text)
	switch strings.ToLower(parts[0]) {
	case "/quit", "/q", "/exit":
		return true

	case "/clear", "/c":
		s.conversation = model.NewConversation(s.cfg.Chat.SystemPrompt)
		fmt.Println(DimStyle.Render("Conversation cleared."))

	case "/mode":
		if len(parts) > 1 {
			mode := strings.ToLower(parts[1])
			if mode == config.DeliveryStream || mode == config.DeliveryStructured {
				s.mode = mode
			} else {
				fmt.Println(WarningStyle.Render("Unknown mode: " + parts[1]))
				break
			}
		}
		fmt.Println(DimStyle.Render("Delivery mode: " + s.mode))

	case "/history":
		for _, turn := range s.conversation.GetHistory() {
			if turn.Role == model.RoleSystem {
				continue
			}
			fmt.Printf("%s: %s\n", turn.Role.DisplayName(), turn.Preview(120))
		}

	case "/help", "/h":
		fmt.Println(strings.Join([]string{
			"  /clear     start a new conversation",
			"  /mode [m]  show or set delivery mode (stream, structured)",
			"  /history   show the conversation so far",
			"  /quit      exit",
		}, "\n"))

	default:
		fmt.Println(WarningStyle.Render("Unknown command: " + parts[0]))
	}
	return false
}

func (s *chatSession) printWelcome() {
	fmt.Println(TitleStyle.Render("inferchat"))
	fmt.Printf("Server: %s | mode: %s\n", s.client.BaseURL(), s.mode)
	fmt.Println(DimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func (s *chatSession) printSummary() {
	turns := 0
	for _, turn := range s.conversation.GetHistory() {
		if turn.Role == model.RoleUser {
			turns++
		}
	}
	fmt.Printf("\n%d exchanges in %.0fs. Bye.\n", turns, time.Since(s.startTime).Seconds())
}
