// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/ui/components"
)

// View renders the full chat screen.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	s := m.dispatcher.State()

	header := m.theme.Header.Width(m.width).Render("Mentor — AI Study Assistant")

	body := m.viewport.View()
	if !s.SidebarCollapsed {
		sidebar := components.RenderSidebar(s, m.theme, m.viewport.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	}

	input := m.theme.InputContainer.Width(m.width - 2).Render(
		m.theme.InputPrompt.Render("> ") + m.input.View())

	status := components.RenderStatusBar(s, components.StatusInfo{
		Model:     m.modelName,
		Streaming: m.controller.IsStreaming(),
		DemoMode:  s.Settings.DemoMode,
		Width:     m.width,
	}, m.theme)

	sections := []string{header, body, input, status}

	if toasts := components.RenderToasts(s.Toasts, m.theme); toasts != "" {
		sections = append(sections, toasts)
	}
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// refreshViewport re-renders the active transcript into the viewport and
// follows the tail.
func (m *Model) refreshViewport() {
	s := m.dispatcher.State()
	session := s.ActiveSession()
	if session == nil {
		m.viewport.SetContent(m.theme.ThinkingText.Render(
			"No session yet. Press Ctrl+N or just start typing."))
		return
	}

	var sb strings.Builder
	for i := range session.Messages {
		msg := &session.Messages[i]
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

// renderMessage renders one transcript entry.
func (m *Model) renderMessage(msg *state.Message) string {
	var sb strings.Builder

	switch msg.Role {
	case state.RoleUser:
		sb.WriteString(m.theme.UserLabel.Render("You"))
	default:
		sb.WriteString(m.theme.ModelLabel.Render("Mentor"))
	}
	sb.WriteString("\n")

	for _, att := range msg.Attachments {
		sb.WriteString(m.theme.ThinkingText.Render("[" + att.Name + "]"))
		sb.WriteString("\n")
	}

	if msg.IsThinking && msg.Content == "" {
		sb.WriteString(m.spinner.View())
		sb.WriteString(m.theme.ThinkingText.Render(" Thinking..."))
		sb.WriteString("\n")
		return sb.String()
	}

	content := msg.Content
	// Model output is markdown; user input stays verbatim.
	if msg.Role == state.RoleModel && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n") + "\n"
		}
	}
	sb.WriteString(m.theme.MessageBody.Render(content))
	sb.WriteString("\n")

	return sb.String()
}

// renderHelp renders the key binding reference.
func (m *Model) renderHelp() string {
	bindings := []struct{ keys, desc string }{
		{"Enter", "send message"},
		{"Esc", "stop streaming"},
		{"Ctrl+N", "new session"},
		{"Tab / Shift+Tab", "switch session"},
		{"Ctrl+B", "toggle sidebar"},
		{"PgUp / PgDn", "scroll transcript"},
		{"Ctrl+G", "toggle this help"},
		{"Ctrl+C", "quit"},
		{"/help", "list study commands"},
	}

	var sb strings.Builder
	for _, b := range bindings {
		sb.WriteString(m.theme.HelpKey.Render(b.keys))
		sb.WriteString("  ")
		sb.WriteString(m.theme.HelpDesc.Render(b.desc))
		sb.WriteString("\n")
	}
	return sb.String()
}
