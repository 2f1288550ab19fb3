// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// ParseResult is the outcome of parsing one line of input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name (e.g., "/quiz")
	CommandName string

	// Args are the tokenized arguments
	Args []string

	// RawArgs is the unparsed argument portion, whitespace-trimmed
	RawArgs string
}

// IsCommand returns true if the input looks like a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// Parse tokenizes one line of input against the registry.
// Returns IsCommand=false if the input does not start with /.
func (r *Registry) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)

	result := ParseResult{}
	if !strings.HasPrefix(input, "/") {
		return result
	}
	result.IsCommand = true

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return result
	}

	result.CommandName = parts[0]
	result.Args = parts[1:]
	result.RawArgs = strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
	result.Command = r.Get(result.CommandName)
	return result
}

// splitCommandLine splits input into tokens, respecting single and
// double quotes so arguments may contain spaces.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingle, inDouble bool

	for _, char := range input {
		switch {
		case char == '\'' && !inDouble:
			inSingle = !inSingle
		case char == '"' && !inSingle:
			inDouble = !inDouble
		case unicode.IsSpace(char) && !inSingle && !inDouble:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
