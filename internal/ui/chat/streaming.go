// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the mentor TUI.
//
// This file implements render batching for smooth, flicker-free output
// while a response streams. Chunk updates arrive much faster than a
// terminal can usefully repaint; the RenderLimiter coalesces them so the
// transcript repaints at a capped frame rate instead of once per chunk.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// RENDER LIMITER
// =============================================================================

// RenderLimiter coalesces streaming updates into frames.
//
// Every state change during streaming calls MarkDirty; the actual
// repaint happens on the next tick, and only if something changed since
// the previous frame. This caps rendering at maxFPS regardless of how
// fast chunks arrive.
type RenderLimiter struct {
	dirty      bool
	lastRender time.Time
	minFrame   time.Duration
}

// NewRenderLimiter creates a limiter capped at maxFPS frames per second.
// Values outside 1-60 fall back to 30.
func NewRenderLimiter(maxFPS int) *RenderLimiter {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}
	return &RenderLimiter{
		minFrame:   time.Second / time.Duration(maxFPS),
		lastRender: time.Now(),
	}
}

// MarkDirty records that content changed since the last frame.
func (rl *RenderLimiter) MarkDirty() {
	rl.dirty = true
}

// ShouldRender reports whether a repaint is due, and if so consumes the
// dirty flag and starts the next frame window.
func (rl *RenderLimiter) ShouldRender() bool {
	if !rl.dirty {
		return false
	}
	if time.Since(rl.lastRender) < rl.minFrame {
		return false
	}
	rl.dirty = false
	rl.lastRender = time.Now()
	return true
}

// Flush consumes the dirty flag unconditionally. Used when a stream
// finishes so the final content always lands on screen.
func (rl *RenderLimiter) Flush() bool {
	was := rl.dirty
	rl.dirty = false
	rl.lastRender = time.Now()
	return was
}

// Reset clears pending state when a new stream starts.
func (rl *RenderLimiter) Reset() {
	rl.dirty = false
	rl.lastRender = time.Now()
}

// =============================================================================
// STREAM TICK
// =============================================================================

// StreamTickMsg drives repaints while a response is streaming.
type StreamTickMsg struct {
	Time time.Time
}

// streamTickCmd emits StreamTickMsg at ~30fps.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
