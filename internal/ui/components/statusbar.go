// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// StatusInfo carries the fields the status bar displays.
type StatusInfo struct {
	Model     string
	Streaming bool
	DemoMode  bool
	Width     int
}

// RenderStatusBar renders the one-line status bar.
func RenderStatusBar(s *state.AppState, info StatusInfo, theme *styles.Theme) string {
	parts := []string{info.Model}

	if info.DemoMode {
		parts = append(parts, "direct")
	} else {
		parts = append(parts, "proxy")
	}

	if doc := s.PinnedDocument(); doc != nil {
		parts = append(parts, fmt.Sprintf("pinned: %s", doc.Name))
	}

	if info.Streaming {
		parts = append(parts, "streaming (esc to stop)")
	} else {
		parts = append(parts, "? help")
	}

	line := strings.Join(parts, " | ")
	return theme.StatusBar.Width(info.Width).Render(line)
}
