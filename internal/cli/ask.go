// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler.
//
// Handles "inferchat ask" which sends one question to the server and
// prints the answer to stdout.
//
// Examples:
//   inferchat ask "What is a goroutine?"
//   inferchat ask --structured "Summarize this"
//   inferchat ask --json "List the modes"
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/saksham-jain177/inferchat/internal/api"
	"github.com/saksham-jain177/inferchat/internal/config"
	"github.com/saksham-jain177/inferchat/internal/model"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var askRenderer *glamour.TermRenderer

func init() {
	var err error
	askRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		askRenderer = nil
	}
}

// renderMarkdown renders markdown for terminal display, falling back
// to the raw text on any failure.
func renderMarkdown(content string) string {
	if askRenderer == nil {
		return content
	}
	rendered, err := askRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse renders markdown only when stdout is a TTY so piped
// output stays clean.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Println(response)
	}
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAskCommand implements "inferchat ask".
func HandleAskCommand(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return ErrMissingArgument("query", `inferchat ask "What is a goroutine?"`)
	}

	cfg := config.Global()
	client := newClient(cfg, args)
	mode := deliveryMode(cfg, args)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.TimeoutSecs)*time.Second)
	defer cancel()

	// JSON and structured delivery both need the complete payload.
	if args.JSON || mode == config.DeliveryStructured {
		return askStructured(ctx, client, args)
	}
	return askStream(ctx, client, args)
}

// askStructured performs a single-shot call and prints the answer with
// its routing decision.
func askStructured(ctx context.Context, client *api.Client, args Args) error {
	start := time.Now()
	resp, err := client.InferAdaptive(ctx, args.Query)
	elapsed := time.Since(start)

	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Query:       args.Query,
			Response:    resp.Text(),
			Mode:        resp.Mode,
			Domain:      resp.Domain,
			ContextUsed: resp.ContextUsed,
			ElapsedSecs: elapsed.Seconds(),
		}).Print()
	}

	displayResponse(resp.Text())

	if !args.Quiet {
		info, _ := model.GetModeInfo(resp.Mode)
		line := fmt.Sprintf("[%s] %s", info.DisplayBadge(), info.Name)
		if resp.Domain != "" {
			line += " | domain: " + resp.Domain
		}
		if resp.ContextUsed {
			line += " | retrieval context used"
		}
		fmt.Fprintln(os.Stderr, DimStyle.Render(line))
	}
	return nil
}

// askStream streams the answer token by token to stdout.
func askStream(ctx context.Context, client *api.Client, args Args) error {
	stats, err := client.InferStreamWithStats(ctx, args.Query, func(token string) {
		fmt.Print(token)
	})
	fmt.Println()

	if err != nil {
		// Partial output is already on screen; the error explains the cut.
		return err
	}

	if args.Verbose {
		fmt.Fprintln(os.Stderr, DimStyle.Render(fmt.Sprintf(
			"%d tokens, first token %dms, total %.1fs",
			stats.TokenCount,
			stats.FirstTokenTime.Milliseconds(),
			stats.TotalTime.Seconds(),
		)))
	}
	return nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// newClient builds the API client honoring the --server override.
func newClient(cfg *config.Config, args Args) *api.Client {
	baseURL := cfg.Server.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}
	return api.NewClient(baseURL).WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second)
}

// deliveryMode resolves the delivery mode honoring the CLI override.
func deliveryMode(cfg *config.Config, args Args) string {
	if args.Mode != "" {
		return args.Mode
	}
	return cfg.Chat.DeliveryMode
}
