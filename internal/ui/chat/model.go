// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	chatctl "github.com/jeranaias/mentor-tui/internal/chat"
	"github.com/jeranaias/mentor-tui/internal/commands"
	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// toastLifetime is how long a toast stays on screen.
const toastLifetime = 4 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// stateChangedMsg signals that the dispatcher committed a transition.
type stateChangedMsg struct{}

// sendDoneMsg reports a finished (or failed) chat turn.
type sendDoneMsg struct {
	err error
}

// toastExpireMsg removes a toast after its display time.
type toastExpireMsg struct {
	id string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It renders snapshots
// from the dispatcher and never mutates state directly: every write goes
// through a dispatched action or the streaming controller.
type Model struct {
	dispatcher *state.Dispatcher
	controller *chatctl.Controller
	registry   *commands.Registry
	cmdCtx     *commands.Context
	theme      *styles.Theme
	keyMap     KeyMap
	modelName  string

	width  int
	height int

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	renderer *glamour.TermRenderer
	limiter  *RenderLimiter

	// updates carries a coalesced "state changed" signal from the
	// dispatcher goroutine into the Bubble Tea loop.
	updates chan struct{}

	// seenToasts tracks toast IDs that already have an expiry scheduled.
	seenToasts map[string]bool

	showHelp bool
	lastErr  error
}

// NewModel creates the chat view. The model subscribes to the dispatcher
// immediately, so it must be created before any streaming starts.
func NewModel(d *state.Dispatcher, c *chatctl.Controller, cmdCtx *commands.Context, theme *styles.Theme, modelName string) *Model {
	input := textinput.New()
	input.Placeholder = "Ask anything about your studies..."
	input.Prompt = ""
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := &Model{
		dispatcher: d,
		controller: c,
		registry:   commands.NewRegistry(),
		cmdCtx:     cmdCtx,
		theme:      theme,
		keyMap:     DefaultKeyMap(),
		modelName:  modelName,
		viewport:   viewport.New(0, 0),
		input:      input,
		spinner:    sp,
		limiter:    NewRenderLimiter(30),
		updates:    make(chan struct{}, 1),
		seenToasts: make(map[string]bool),
	}

	// Non-blocking: the dispatcher holds its mutex while notifying, so the
	// subscriber must never wait on the UI loop. A full channel is fine,
	// the pending signal already covers the new transition.
	d.Subscribe(func(*state.AppState, state.Action) {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	})

	return m
}

// Init starts the input cursor, the spinner, and the state listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForUpdate(),
	)
}

// waitForUpdate blocks until the dispatcher signals a transition.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return stateChangedMsg{}
	}
}
