// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives a streaming conversation turn from user input to a
// committed transcript.
//
// The controller owns the in-flight guard, the placeholder message the
// stream fills in, cooperative cancellation, and the error fallback. It
// never touches state directly: all writes go through the dispatcher.
package chat

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/jeranaias/mentor-tui/internal/gemini"
	"github.com/jeranaias/mentor-tui/internal/state"
)

// ErrorFallback replaces the placeholder content when a stream fails
// before producing anything useful.
const ErrorFallback = "⚠️ Error generating response."

// Streamer is the slice of the Gemini client the controller needs.
type Streamer interface {
	GenerateStream(ctx context.Context, model string, req *gemini.GenerateRequest, callback gemini.StreamCallback) error
}

// Narrator speaks completed responses aloud when auto-read is enabled.
type Narrator interface {
	Speak(text string)
}

// =============================================================================
// CANCEL MANAGEMENT
// =============================================================================

// cancelManager guards the cancel function for the in-flight stream.
// It is accessed from the UI loop and the streaming goroutine, so every
// access goes through the mutex. Use as a pointer so the mutex is never
// copied.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	inFlight   bool
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// begin marks a stream as in flight and stores its cancel function.
// Returns false if a stream is already running.
func (cm *cancelManager) begin(fn context.CancelFunc) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.inFlight {
		return false
	}
	cm.inFlight = true
	cm.cancelFunc = fn
	return true
}

// cancel invokes the stored cancel function, if any. Safe to call
// multiple times; the in-flight flag is released by finish, not here.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// finish cancels any remaining context and releases the in-flight flag.
func (cm *cancelManager) finish() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
	cm.inFlight = false
}

func (cm *cancelManager) isInFlight() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.inFlight
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs one streaming conversation turn at a time.
type Controller struct {
	dispatcher *state.Dispatcher
	streamer   Streamer
	narrator   Narrator // optional
	cancelMgr  *cancelManager
}

// NewController creates a controller over the given dispatcher and client.
func NewController(d *state.Dispatcher, s Streamer) *Controller {
	return &Controller{
		dispatcher: d,
		streamer:   s,
		cancelMgr:  newCancelManager(),
	}
}

// WithNarrator enables spoken playback of completed responses.
func (c *Controller) WithNarrator(n Narrator) *Controller {
	c.narrator = n
	return c
}

// IsStreaming reports whether a turn is currently in flight.
func (c *Controller) IsStreaming() bool {
	return c.cancelMgr.isInFlight()
}

// Cancel requests cooperative cancellation of the in-flight turn. Content
// streamed so far stays in the transcript.
func (c *Controller) Cancel() {
	c.cancelMgr.cancel()
}

// Send errors.
var (
	ErrNoActiveSession = errors.New("no active session")
	ErrBusy            = errors.New("a response is already streaming")
	ErrEmptyMessage    = errors.New("message is empty")
)

// Send runs one conversation turn: it appends the user message and an
// empty placeholder, then streams the model response into the placeholder
// with cumulative updates. Blocks until the turn finishes, fails, or is
// cancelled; call it from a goroutine in interactive code.
//
// Guards, checked in order: an active session must exist, no other turn
// may be in flight, and the message must carry text or an image.
func (c *Controller) Send(ctx context.Context, text string, imageDataURL string) error {
	text = strings.TrimSpace(text)
	if text == "" && imageDataURL == "" {
		return ErrEmptyMessage
	}

	snapshot := c.dispatcher.State()
	session := snapshot.ActiveSession()
	if session == nil {
		return ErrNoActiveSession
	}
	sessionID := session.ID
	history := session.Messages

	streamCtx, cancel := context.WithCancel(ctx)
	if !c.cancelMgr.begin(cancel) {
		cancel()
		return ErrBusy
	}
	defer c.cancelMgr.finish()

	userMsg := state.NewUserMessage(text)
	if imageDataURL != "" {
		userMsg.Attachments = []state.Attachment{{Name: "attachment", Type: "image", Content: imageDataURL}}
	}
	c.dispatcher.Dispatch(state.AddMessage{SessionID: sessionID, Message: userMsg})
	c.dispatcher.Dispatch(state.AddMessage{SessionID: sessionID, Message: state.NewPlaceholderMessage()})

	req := gemini.BuildChatRequest(gemini.ChatInput{
		History:       history,
		Message:       text,
		ImageDataURL:  imageDataURL,
		PinnedDoc:     snapshot.PinnedDocument(),
		AvailableDocs: snapshot.Documents,
	})

	acc := gemini.NewStreamAccumulator()
	err := c.streamer.GenerateStream(streamCtx, gemini.ModelChat, req, func(chunk gemini.StreamChunk) {
		acc.Add(chunk)
		if chunk.Content != "" {
			c.dispatcher.Dispatch(state.UpdateLastMessage{SessionID: sessionID, Content: acc.Content()})
		}
	})
	if err == nil {
		err = acc.Err()
	}

	switch {
	case errors.Is(err, context.Canceled):
		// Cancellation keeps whatever streamed before it.
		log.Printf("CHAT | stream cancelled | session=%s chars=%d", sessionID, len(acc.Content()))
		return nil

	case err != nil:
		log.Printf("CHAT | stream failed | session=%s err=%v", sessionID, err)
		c.dispatcher.Dispatch(state.UpdateLastMessage{SessionID: sessionID, Content: ErrorFallback})
		c.dispatcher.Dispatch(state.AddToast{Toast: state.NewToast(state.ToastError, err.Error())})
		return err
	}

	final := acc.Content()
	c.dispatcher.Dispatch(state.UpdateLastMessage{SessionID: sessionID, Content: final})

	if c.narrator != nil && c.dispatcher.State().Settings.AutoRead {
		c.narrator.Speak(StripMarkup(final))
	}
	return nil
}

// =============================================================================
// SESSION HELPERS
// =============================================================================

// maxTitleRunes bounds auto-generated session titles.
const maxTitleRunes = 40

// StartSession creates and activates a new empty session.
func (c *Controller) StartSession() string {
	sess := state.NewSessionEntity("New Session")
	c.dispatcher.Dispatch(state.NewSession{Session: sess})
	return sess.ID
}

// AutoTitle derives a session title from its first user message.
func AutoTitle(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	title = strings.ReplaceAll(title, "\n", " ")
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes]) + "..."
	}
	if title == "" {
		title = "New Session"
	}
	return title
}

// =============================================================================
// MARKUP STRIPPING
// =============================================================================

var (
	reThinking  = regexp.MustCompile(`(?s)<thinking>.*?</thinking>`)
	reCodeBlock = regexp.MustCompile("(?s)```.*?```")
	reInlineMd  = regexp.MustCompile("[*_`#]+")
	reLatex     = regexp.MustCompile(`\${1,2}[^$]*\${1,2}`)
)

// StripMarkup removes reasoning tags, code fences, LaTeX and markdown
// punctuation so the narrator reads prose only.
func StripMarkup(s string) string {
	s = reThinking.ReplaceAllString(s, "")
	s = reCodeBlock.ReplaceAllString(s, " (code omitted) ")
	s = reLatex.ReplaceAllString(s, " (math omitted) ")
	s = reInlineMd.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
