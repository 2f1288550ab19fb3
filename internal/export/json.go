// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// FULL-STATE SNAPSHOT
// =============================================================================

// WriteStateSnapshot dumps the durable application state to path as
// indented JSON, written atomically. Ephemeral fields (active session,
// toasts, loading flags) carry a `json:"-"` tag and are never included.
func WriteStateSnapshot(s *state.AppState, path string) error {
	if s == nil {
		return fmt.Errorf("state is nil")
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports a single session as JSON.
// NOTE: JSON exports always include the complete session and ignore
// filtering options, so the output is a faithful copy of the stored data.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter. Options are accepted for
// consistency with the other exporters but do not filter the output.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a session to JSON.
func (e *JSONExporter) Export(session *state.ChatSession) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	return json.MarshalIndent(session, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
