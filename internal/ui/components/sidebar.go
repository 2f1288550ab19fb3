// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the mentor TUI.
package components

import (
	"strings"

	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// SidebarWidth is the fixed column width of the session sidebar.
const SidebarWidth = 28

// RenderSidebar renders the session list and document list for the
// current snapshot. Height is the number of content rows available.
func RenderSidebar(s *state.AppState, theme *styles.Theme, height int) string {
	inner := SidebarWidth - 4 // border + padding

	var sb strings.Builder
	sb.WriteString(theme.SidebarTitle.Render("Sessions"))
	sb.WriteString("\n")

	if len(s.Sessions) == 0 {
		sb.WriteString(theme.DocumentItem.Render("(none yet)"))
		sb.WriteString("\n")
	}
	for _, sess := range s.Sessions {
		title := util.TruncateWidth(sess.Title, inner-2)
		if sess.ID == s.ActiveSessionID {
			sb.WriteString(theme.SessionActive.Render("> " + title))
		} else {
			sb.WriteString(theme.SessionItem.Render("  " + title))
		}
		sb.WriteString("\n")
	}

	if len(s.Documents) > 0 {
		sb.WriteString("\n")
		sb.WriteString(theme.SidebarTitle.Render("Documents"))
		sb.WriteString("\n")
		for _, doc := range s.Documents {
			name := util.TruncateWidth(doc.Name, inner-2)
			if doc.ID == s.PinnedDocumentID {
				sb.WriteString(theme.DocumentPinned.Render("* " + name))
			} else {
				sb.WriteString(theme.DocumentItem.Render("  " + name))
			}
			sb.WriteString("\n")
		}
	}

	return theme.Sidebar.Width(SidebarWidth - 2).Height(height).Render(sb.String())
}
