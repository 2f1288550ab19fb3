// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	chatctl "github.com/jeranaias/mentor-tui/internal/chat"
	"github.com/jeranaias/mentor-tui/internal/commands"
	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/ui/components"
)

// Update handles all incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateChangedMsg:
		cmds := []tea.Cmd{m.waitForUpdate()}
		m.limiter.MarkDirty()
		if m.controller.IsStreaming() {
			// Streaming repaints are driven by the frame tick.
			cmds = append(cmds, streamTickCmd())
		} else if m.limiter.Flush() {
			m.refreshViewport()
		}
		cmds = append(cmds, m.scheduleToastExpiry()...)
		return m, tea.Batch(cmds...)

	case StreamTickMsg:
		var cmd tea.Cmd
		if m.controller.IsStreaming() {
			cmd = streamTickCmd()
		}
		if m.limiter.ShouldRender() {
			m.refreshViewport()
		}
		return m, cmd

	case sendDoneMsg:
		if m.limiter.Flush() || msg.err != nil {
			m.refreshViewport()
		}
		if msg.err != nil && !errors.Is(msg.err, chatctl.ErrBusy) {
			m.lastErr = msg.err
		}
		return m, nil

	case commands.DoneMsg:
		if msg.Err != nil {
			m.dispatcher.Dispatch(state.AddToast{
				Toast: state.NewToast(state.ToastError, msg.Err.Error()),
			})
		}
		m.refreshViewport()
		return m, nil

	case toastExpireMsg:
		delete(m.seenToasts, msg.id)
		m.dispatcher.Dispatch(state.RemoveToast{ToastID: msg.id})
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey routes one key press.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.controller.IsStreaming() {
			m.controller.Cancel()
			return m, nil
		}
		m.showHelp = false
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keyMap.NewSession):
		m.controller.StartSession()
		return m, nil

	case key.Matches(msg, m.keyMap.NextSession):
		m.cycleSession(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PrevSession):
		m.cycleSession(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleSidebar):
		m.dispatcher.Dispatch(state.ToggleSidebar{})
		m.resize(m.width, m.height)
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.PageUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.PageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed message through the controller.
func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	if text == "" || m.controller.IsStreaming() {
		return nil
	}
	m.input.Reset()
	m.limiter.Reset()

	if commands.IsCommand(text) {
		res := m.registry.Parse(text)
		if res.Command == nil {
			m.dispatcher.Dispatch(state.AddToast{
				Toast: state.NewToast(state.ToastWarn, "Unknown command: "+res.CommandName),
			})
			return nil
		}
		return tea.Batch(res.Command.Handler(m.cmdCtx, res), m.spinner.Tick)
	}

	if m.dispatcher.State().ActiveSession() == nil {
		m.controller.StartSession()
	}

	controller := m.controller
	send := func() tea.Msg {
		return sendDoneMsg{err: controller.Send(context.Background(), text, "")}
	}
	return tea.Batch(send, streamTickCmd(), m.spinner.Tick)
}

// cycleSession activates the next or previous session in list order.
func (m *Model) cycleSession(step int) {
	s := m.dispatcher.State()
	n := len(s.Sessions)
	if n < 2 {
		return
	}
	idx := 0
	for i := range s.Sessions {
		if s.Sessions[i].ID == s.ActiveSessionID {
			idx = i
			break
		}
	}
	next := (idx + step + n) % n
	m.dispatcher.Dispatch(state.SetActiveSession{SessionID: s.Sessions[next].ID})
	m.refreshViewport()
}

// scheduleToastExpiry returns expiry commands for toasts that appeared
// since the last transition.
func (m *Model) scheduleToastExpiry() []tea.Cmd {
	var cmds []tea.Cmd
	for _, toast := range m.dispatcher.State().Toasts {
		if m.seenToasts[toast.ID] {
			continue
		}
		m.seenToasts[toast.ID] = true
		id := toast.ID
		cmds = append(cmds, tea.Tick(toastLifetime, func(time.Time) tea.Msg {
			return toastExpireMsg{id: id}
		}))
	}
	return cmds
}

// resize recomputes layout and rebuilds the markdown renderer for the
// new wrap width.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	contentWidth := width
	if !m.dispatcher.State().SidebarCollapsed {
		contentWidth -= components.SidebarWidth
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	// header + input + status
	contentHeight := height - 6
	if contentHeight < 3 {
		contentHeight = 3
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.input.Width = contentWidth - 4

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(contentWidth-2),
	)
	if err == nil {
		m.renderer = renderer
	}
}
