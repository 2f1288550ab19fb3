// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the mentor TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	App       lipgloss.Style
	Header    lipgloss.Style
	StatusBar lipgloss.Style

	// Sidebar
	Sidebar        lipgloss.Style
	SidebarTitle   lipgloss.Style
	SessionItem    lipgloss.Style
	SessionActive  lipgloss.Style
	DocumentItem   lipgloss.Style
	DocumentPinned lipgloss.Style

	// Messages
	UserLabel    lipgloss.Style
	ModelLabel   lipgloss.Style
	MessageBody  lipgloss.Style
	ThinkingText lipgloss.Style
	Spinner      lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// Toasts
	ToastSuccess lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastWarn    lipgloss.Style
	ToastError   lipgloss.Style

	// Help
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// palette is the raw color set a theme is built from.
type palette struct {
	accent    string
	secondary string
	muted     string
	border    string
	success   string
	warn      string
	errc      string
	userLabel string
}

var lightPalette = palette{
	accent:    "#0366d6",
	secondary: "#586069",
	muted:     "#6a737d",
	border:    "#e1e4e8",
	success:   "#22863a",
	warn:      "#b08800",
	errc:      "#d73a49",
	userLabel: "#6f42c1",
}

var darkPalette = palette{
	accent:    "#7aa2f7",
	secondary: "#a9b1d6",
	muted:     "#565f89",
	border:    "#414868",
	success:   "#9ece6a",
	warn:      "#e0af68",
	errc:      "#f7768e",
	userLabel: "#bb9af7",
}

// NewTheme builds a theme for the given name: "light", "dark", or
// "system" (detected from the terminal background).
func NewTheme(name string) *Theme {
	isDark := false
	switch name {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}

	p := lightPalette
	if isDark {
		p = darkPalette
	}

	accent := lipgloss.Color(p.accent)
	muted := lipgloss.Color(p.muted)
	border := lipgloss.Color(p.border)

	return &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),

		App: lipgloss.NewStyle(),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(border).
			Padding(0, 1),
		SidebarTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.secondary)),
		SessionItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.secondary)),
		SessionActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		DocumentItem: lipgloss.NewStyle().
			Foreground(muted),
		DocumentPinned: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.success)),

		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.userLabel)),
		ModelLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.success)),
		MessageBody: lipgloss.NewStyle(),
		ThinkingText: lipgloss.NewStyle().
			Italic(true).
			Foreground(muted),
		Spinner: lipgloss.NewStyle().
			Foreground(accent),

		InputContainer: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(border).
			Padding(0, 1),
		InputPrompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		ToastSuccess: toastStyle(p.success),
		ToastInfo:    toastStyle(p.accent),
		ToastWarn:    toastStyle(p.warn),
		ToastError:   toastStyle(p.errc),

		HelpKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.secondary)),
		HelpDesc: lipgloss.NewStyle().
			Foreground(muted),
	}
}

func toastStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1)
}

// GlamourStyle returns the glamour standard style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
