// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/tools"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command.
type Command struct {
	// Name is the primary command name (e.g., "/quiz")
	Name string

	// Aliases are alternative names (e.g., "/fc")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/quiz <topic> [count]")
	Usage string

	// Handler executes the command
	Handler func(ctx *Context, res ParseResult) tea.Cmd

	// Category for grouping in help display
	Category string
}

// Chat streams one user turn into the active session. Satisfied by the
// chat controller.
type Chat interface {
	Send(ctx context.Context, text string, imageDataURL string) error
}

// Context carries the services command handlers operate on.
type Context struct {
	Dispatcher *state.Dispatcher
	Tools      *tools.Service
	Chat       Chat

	// ExportDir is where /export writes session files.
	ExportDir string

	// Theme is passed through to HTML exports.
	Theme string
}

// DoneMsg reports a finished command back to the Tea loop. Most
// handlers commit their results through the dispatcher; Err is set when
// the command itself failed.
type DoneMsg struct {
	Err error
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// HelpText renders a usage summary for every registered command.
func (r *Registry) HelpText() string {
	var sb strings.Builder
	sb.WriteString("Available commands:\n\n")
	for _, cmd := range r.All() {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		sb.WriteString("  " + usage)
		if len(cmd.Aliases) > 0 {
			sb.WriteString(" (" + strings.Join(cmd.Aliases, ", ") + ")")
		}
		sb.WriteString("\n      " + cmd.Description + "\n")
	}
	return sb.String()
}

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/?"},
		Description: "List available commands",
		Handler:     handleHelp(r),
		Category:    "General",
	})
	r.Register(&Command{
		Name:        "/flashcards",
		Aliases:     []string{"/fc"},
		Description: "Generate 8 flashcards for a topic",
		Usage:       "/flashcards <topic>",
		Handler:     handleFlashcards,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/quiz",
		Description: "Generate a multiple-choice quiz",
		Usage:       "/quiz <topic> [count]",
		Handler:     handleQuiz,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/plan",
		Description: "Generate a 4-week study plan",
		Usage:       "/plan <topic>",
		Handler:     handlePlan,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/summarize",
		Aliases:     []string{"/sum"},
		Description: "Summarize pasted text",
		Usage:       "/summarize <text>",
		Handler:     handleSummarize,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/solve",
		Description: "Worked solution for a problem",
		Usage:       "/solve [math|code] <problem>",
		Handler:     handleSolve,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/analyze",
		Description: "Review a code snippet",
		Usage:       "/analyze <language> <code>",
		Handler:     handleAnalyze,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/mastery",
		Description: "Estimate mastery from your study activity",
		Handler:     handleMastery,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/image",
		Description: "Send an image with an optional question",
		Usage:       "/image <path> [prompt]",
		Handler:     handleImage,
		Category:    "Study",
	})
	r.Register(&Command{
		Name:        "/doc",
		Description: "Import a study document from a file",
		Usage:       "/doc <path>",
		Handler:     handleDoc,
		Category:    "Documents",
	})
	r.Register(&Command{
		Name:        "/pin",
		Description: "Pin a document as chat context",
		Usage:       "/pin <name>",
		Handler:     handlePin,
		Category:    "Documents",
	})
	r.Register(&Command{
		Name:        "/rmdoc",
		Description: "Delete a document from the library",
		Usage:       "/rmdoc <name>",
		Handler:     handleRemoveDoc,
		Category:    "Documents",
	})
	r.Register(&Command{
		Name:        "/export",
		Description: "Export the active session",
		Usage:       "/export [md|html|json]",
		Handler:     handleExport,
		Category:    "Sessions",
	})
	r.Register(&Command{
		Name:        "/title",
		Description: "Rename the active session",
		Usage:       "/title <text>",
		Handler:     handleTitle,
		Category:    "Sessions",
	})
	r.Register(&Command{
		Name:        "/delete",
		Description: "Delete the active session",
		Handler:     handleDelete,
		Category:    "Sessions",
	})
	r.Register(&Command{
		Name:        "/clear",
		Description: "Delete all sessions, documents, cards and plans",
		Handler:     handleClear,
		Category:    "Sessions",
	})
	r.Register(&Command{
		Name:        "/settings",
		Description: "Toggle a preference",
		Usage:       "/settings <voice|autoread|demo> <on|off>",
		Handler:     handleSettings,
		Category:    "General",
	})
}
