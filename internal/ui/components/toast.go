// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// RenderToasts renders the active toast notifications, newest last.
// Returns "" when there are none.
func RenderToasts(toasts []state.Toast, theme *styles.Theme) string {
	if len(toasts) == 0 {
		return ""
	}

	var lines []string
	for _, toast := range toasts {
		var style = theme.ToastInfo
		switch toast.Type {
		case state.ToastSuccess:
			style = theme.ToastSuccess
		case state.ToastWarn:
			style = theme.ToastWarn
		case state.ToastError:
			style = theme.ToastError
		}
		lines = append(lines, style.Render(toast.Message))
	}
	return strings.Join(lines, "\n")
}
