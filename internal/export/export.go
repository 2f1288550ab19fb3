// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes sessions and full application snapshots out to
// files. Export is one-way: nothing in this package reads exports back.
package export

import (
	"fmt"
	"time"

	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a chat session to a target format.
type Exporter interface {
	// Export renders the session and returns the file content.
	Export(session *state.ChatSession) ([]byte, error)

	// FileExtension returns the extension for the format (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type of the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files land. Default: current working directory.
	OutputDir string

	// IncludeMetadata includes the metadata header (dates, counts).
	IncludeMetadata bool

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark"). Default: "light".
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "light",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders a session with the given exporter and writes it
// atomically under opts.OutputDir. Returns the output path.
func ExportToFile(session *state.ChatSession, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(session)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("session_%s_%s%s",
		sanitizeFilename(session.Title),
		timestamp,
		exporter.FileExtension(),
	)

	outputPath := opts.OutputDir + "/" + filename
	if err := util.AtomicWriteFile(outputPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return outputPath, nil
}

// ExportMarkdown exports a session to Markdown.
func ExportMarkdown(session *state.ChatSession, opts *Options) (string, error) {
	return ExportToFile(session, NewMarkdownExporter(opts), opts)
}

// ExportHTML exports a session to HTML.
func ExportHTML(session *state.ChatSession, opts *Options) (string, error) {
	return ExportToFile(session, NewHTMLExporter(opts), opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in filenames on
// Windows or Unix.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "session"
	}

	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

// roleLabel maps a message role onto its display label.
func roleLabel(role state.Role) string {
	switch role {
	case state.RoleUser:
		return "[You]"
	case state.RoleModel:
		return "[Mentor]"
	case state.RoleSystem:
		return "[System]"
	default:
		return "[Unknown]"
	}
}
