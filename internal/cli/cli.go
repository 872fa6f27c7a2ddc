// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for inferchat.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Server  string // --server overrides the configured base URL
	Mode    string // --stream / --structured override the delivery mode

	// Command-specific
	Query      string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `inferchat - terminal client for the adaptive inference server

Inferchat talks to a self-hosted inference server that routes each
query to a LoRA adapter, retrieval pipeline, or the base model.

Usage:
  inferchat                    Start the TUI (default)
  inferchat ask "question"     Ask a single question
  inferchat chat               Interactive REPL chat
  inferchat status, s          Show server health and telemetry
  inferchat config [show|get|set|path]
                               Manage configuration
  inferchat version            Show version
  inferchat help               Show this help

Ask Command:
  inferchat ask "What is a goroutine?"
  inferchat ask --structured "Summarize this"   Single payload with routing info
  inferchat ask --json "List the modes"         JSON output for scripting

Config Commands:
  inferchat config show               Show the full configuration
  inferchat config get KEY            Read one value (dot notation)
  inferchat config set KEY VALUE      Write one value and save
  inferchat config path               Print the config file location

  Keys: server.base_url, server.timeout_secs, server.health_poll_secs,
        chat.delivery_mode, chat.system_prompt, ui.theme, ui.show_stats,
        ui.show_mode_badges, ui.markdown, logging.enabled, logging.path

Global Flags:
  --server URL    Override the configured server address
  --stream        Force streaming delivery for this invocation
  --structured    Force structured delivery for this invocation
  --json          Output in JSON format
  -q, --quiet     Minimal output
  -v, --verbose   Debug output

Interactive Commands (during chat):
  /clear          Start a new conversation
  /mode [m]       Show or set delivery mode
  /help           Show commands
  /quit           Exit
  Ctrl+C          Cancel current generation
  Ctrl+D          Exit chat

Environment:
  INFERCHAT_SERVER_URL, INFERCHAT_TIMEOUT_SECS, INFERCHAT_MODE,
  INFERCHAT_SYSTEM_PROMPT, INFERCHAT_THEME, INFERCHAT_LOG

Examples:
  inferchat                                  Start the TUI
  inferchat ask "Explain LoRA adapters"      One-shot streamed answer
  inferchat ask --structured "ping"          Show the routing decision
  inferchat status --json                    Telemetry for scripting
  inferchat config set chat.delivery_mode structured

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("inferchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments, split out for tests.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "status", "s", "health":
		return CmdStatus, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown word: treat the whole line as an ask query.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--stream":
			parsedArgs.Mode = "stream"
		case "--structured":
			parsedArgs.Mode = "structured"
		case "--server":
			if i+1 < len(args) {
				i++
				parsedArgs.Server = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--server=") {
				parsedArgs.Server = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs collects the query from the positional arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		resp := NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		})
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
