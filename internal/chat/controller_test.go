// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/mentor-tui/internal/gemini"
	"github.com/jeranaias/mentor-tui/internal/state"
)

// fakeStreamer emits scripted increments, optionally failing or blocking
// until cancelled partway through.
type fakeStreamer struct {
	mu         sync.Mutex
	increments []string
	failWith   error
	failAfter  int // increments delivered before failure
	cancelVia  func()
	lastReq    *gemini.GenerateRequest
}

func (f *fakeStreamer) GenerateStream(ctx context.Context, model string, req *gemini.GenerateRequest, cb gemini.StreamCallback) error {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()

	for i, inc := range f.increments {
		if f.failWith != nil && i == f.failAfter {
			return f.failWith
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		cb(gemini.StreamChunk{Content: inc})
		if f.cancelVia != nil && i == 0 {
			f.cancelVia()
		}
	}
	if f.failWith != nil && f.failAfter >= len(f.increments) {
		return f.failWith
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	cb(gemini.StreamChunk{Done: true})
	return nil
}

func (f *fakeStreamer) request() *gemini.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func newTestController(fs *fakeStreamer) (*Controller, *state.Dispatcher) {
	d := state.NewDispatcher(nil)
	c := NewController(d, fs)
	c.StartSession()
	return c, d
}

func lastMessage(t *testing.T, d *state.Dispatcher) state.Message {
	t.Helper()
	sess := d.State().ActiveSession()
	if sess == nil || len(sess.Messages) == 0 {
		t.Fatal("no messages in active session")
	}
	return sess.Messages[len(sess.Messages)-1]
}

func TestSend_StreamsCumulativeContent(t *testing.T) {
	fs := &fakeStreamer{increments: []string{"Hel", "lo ", "there"}}
	c, d := newTestController(fs)

	if err := c.Send(context.Background(), "hi", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	sess := d.State().ActiveSession()
	if len(sess.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 (user + model)", len(sess.Messages))
	}
	if sess.Messages[0].Role != state.RoleUser || sess.Messages[0].Content != "hi" {
		t.Errorf("user message = %+v", sess.Messages[0])
	}
	model := sess.Messages[1]
	if model.Role != state.RoleModel || model.Content != "Hello there" {
		t.Errorf("model message = %+v", model)
	}
	if model.IsThinking {
		t.Error("thinking hint should clear once content lands")
	}
	if c.IsStreaming() {
		t.Error("in-flight flag must be released after completion")
	}
}

func TestSend_GuardNoActiveSession(t *testing.T) {
	d := state.NewDispatcher(nil)
	c := NewController(d, &fakeStreamer{})

	if err := c.Send(context.Background(), "hi", ""); err != ErrNoActiveSession {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestSend_GuardEmptyMessage(t *testing.T) {
	c, _ := newTestController(&fakeStreamer{})
	if err := c.Send(context.Background(), "   \n ", ""); err != ErrEmptyMessage {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestSend_ImageOnlyMessageIsAllowed(t *testing.T) {
	fs := &fakeStreamer{increments: []string{"I see a diagram"}}
	c, d := newTestController(fs)

	if err := c.Send(context.Background(), "", "data:image/png;base64,aW1n"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := lastMessage(t, d).Content; got != "I see a diagram" {
		t.Errorf("content = %q", got)
	}

	// The image must reach the request as a leading inline part.
	parts := fs.request().Contents[len(fs.request().Contents)-1].Parts
	if parts[0].InlineData == nil {
		t.Error("image part missing from request")
	}
}

func TestSend_GuardBusy(t *testing.T) {
	c, _ := newTestController(&fakeStreamer{})

	// Simulate an in-flight stream by holding the flag.
	if !c.cancelMgr.begin(func() {}) {
		t.Fatal("begin should succeed on idle controller")
	}
	defer c.cancelMgr.finish()

	if err := c.Send(context.Background(), "hi", ""); err != ErrBusy {
		t.Errorf("err = %v, want ErrBusy", err)
	}
}

func TestSend_CancellationKeepsPartialContent(t *testing.T) {
	fs := &fakeStreamer{increments: []string{"partial ", "never delivered"}}
	c, d := newTestController(fs)
	fs.cancelVia = c.Cancel

	if err := c.Send(context.Background(), "hi", ""); err != nil {
		t.Fatalf("cancelled Send should not return an error, got %v", err)
	}

	if got := lastMessage(t, d).Content; got != "partial " {
		t.Errorf("content = %q, want partial content retained", got)
	}
	if c.IsStreaming() {
		t.Error("in-flight flag must be released after cancellation")
	}

	// Cancel again on an idle controller: must be a safe no-op.
	c.Cancel()
}

func TestSend_ErrorWritesFallbackAndToast(t *testing.T) {
	boom := errors.New("upstream exploded")
	fs := &fakeStreamer{increments: []string{"some text"}, failWith: boom, failAfter: 1}
	c, d := newTestController(fs)

	if err := c.Send(context.Background(), "hi", ""); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	if got := lastMessage(t, d).Content; got != ErrorFallback {
		t.Errorf("content = %q, want error fallback", got)
	}
	toasts := d.State().Toasts
	if len(toasts) != 1 || toasts[0].Type != state.ToastError {
		t.Errorf("toasts = %+v, want one error toast", toasts)
	}
	if c.IsStreaming() {
		t.Error("in-flight flag must be released after failure")
	}
}

func TestSend_SequentialTurnsCarryHistory(t *testing.T) {
	fs := &fakeStreamer{increments: []string{"first answer"}}
	c, _ := newTestController(fs)

	if err := c.Send(context.Background(), "one", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	fs.increments = []string{"second answer"}
	if err := c.Send(context.Background(), "two", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// History includes the first exchange plus the new user turn.
	req := fs.request()
	if len(req.Contents) != 3 {
		t.Fatalf("contents = %d, want 3", len(req.Contents))
	}
	if req.Contents[0].Parts[0].Text != "one" || req.Contents[1].Parts[0].Text != "first answer" {
		t.Errorf("history malformed: %+v", req.Contents[:2])
	}
	if req.Contents[2].Parts[0].Text != "two" {
		t.Errorf("new turn = %+v", req.Contents[2])
	}
}

type recordingNarrator struct {
	spoken []string
}

func (r *recordingNarrator) Speak(text string) { r.spoken = append(r.spoken, text) }

func TestSend_NarratorSpeaksWhenAutoReadEnabled(t *testing.T) {
	fs := &fakeStreamer{increments: []string{"**Bold** answer ```go\ncode\n``` done"}}
	c, d := newTestController(fs)

	n := &recordingNarrator{}
	c.WithNarrator(n)

	settings := d.State().Settings
	settings.AutoRead = true
	d.Dispatch(state.UpdateSettings{Settings: settings})

	if err := c.Send(context.Background(), "hi", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(n.spoken) != 1 {
		t.Fatalf("spoken = %d, want 1", len(n.spoken))
	}
	if strings.Contains(n.spoken[0], "**") || strings.Contains(n.spoken[0], "```") {
		t.Errorf("markup not stripped: %q", n.spoken[0])
	}
}

func TestSend_NarratorSilentWhenAutoReadDisabled(t *testing.T) {
	fs := &fakeStreamer{increments: []string{"answer"}}
	c, _ := newTestController(fs)

	n := &recordingNarrator{}
	c.WithNarrator(n)

	if err := c.Send(context.Background(), "hi", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(n.spoken) != 0 {
		t.Errorf("narrator should stay silent, spoke %v", n.spoken)
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"thinking tags", "<thinking>plan</thinking>The answer is 4.", "The answer is 4."},
		{"markdown", "**Bold** and _italic_ and `code`", "Bold and italic and code"},
		{"latex", "Area is $\\pi r^2$ exactly", "Area is (math omitted) exactly"},
		{"whitespace collapse", "a\n\n  b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAutoTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"explain photosynthesis", "explain photosynthesis"},
		{"", "New Session"},
		{strings.Repeat("x", 60), strings.Repeat("x", 40) + "..."},
		{"line\nbreaks", "line breaks"},
	}
	for _, tt := range tests {
		if got := AutoTitle(tt.in); got != tt.want {
			t.Errorf("AutoTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
