// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and usage text for mentor.
package cli

import (
	"fmt"
	"os"
	"strconv"
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
	CmdServe
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Model      string
	Theme      string
	Quiet      bool

	// serve
	Port int

	// export
	Output    string
	Format    string // json|md|html
	SessionID string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `mentor - AI study assistant for the terminal

Mentor is a terminal study assistant backed by the Generative Language
API. It keeps chat sessions, study documents, flashcards, and study
plans in a local database.

Usage:
  mentor                     Start the TUI (default)
  mentor tui                 Start the TUI
  mentor serve               Run the local API proxy for keyless clients
  mentor export [session-id] Export data to a file
  mentor version             Show version
  mentor help                Show this help

Export:
  mentor export                      Dump the full state as JSON
  mentor export <session-id>         Export one session
    --format json|md|html            Session export format (default: md)
    --output <dir>                   Output directory (default: .)

Flags:
  --config <path>   Use an alternate config file
  --model <name>    Override the chat model
  --theme <name>    Override the UI theme (light|dark|system)
  --port <n>        Proxy listen port (serve)
  -q, --quiet       Suppress non-essential output

Environment:
  MENTOR_API_KEY    API key (preferred over config file)
  GEMINI_API_KEY    API key fallback
  MENTOR_PROXY_URL  Send requests through a proxy instead of the API
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list.
func ParseArgs(argv []string) (Command, Args) {
	cmd := CmdTUI
	args := Args{Format: "md", Output: "."}
	seenCommand := false

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		next := func() string {
			if i+1 < len(argv) {
				i++
				return argv[i]
			}
			return ""
		}

		switch arg {
		case "--config":
			args.ConfigPath = next()
		case "--model":
			args.Model = next()
		case "--theme":
			args.Theme = next()
		case "--port":
			if p, err := strconv.Atoi(next()); err == nil {
				args.Port = p
			}
		case "--output", "-o":
			args.Output = next()
		case "--format":
			args.Format = next()
		case "-q", "--quiet":
			args.Quiet = true
		case "--version", "-v":
			return CmdVersion, args
		case "--help", "-h":
			return CmdHelp, args

		default:
			if !seenCommand {
				seenCommand = true
				switch arg {
				case "tui":
					cmd = CmdTUI
				case "serve":
					cmd = CmdServe
				case "export":
					cmd = CmdExport
				case "version":
					cmd = CmdVersion
				case "help":
					cmd = CmdHelp
				default:
					fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", arg)
					return CmdHelp, args
				}
				continue
			}
			if cmd == CmdExport && args.SessionID == "" {
				args.SessionID = arg
				continue
			}
			args.Raw = append(args.Raw, arg)
		}
	}

	return cmd, args
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("mentor %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
