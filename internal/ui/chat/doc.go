// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat screen.
//
// The model subscribes to the dispatcher and repaints on committed
// transitions. During streaming, a render limiter coalesces repaints to
// a fixed frame rate so fast token arrival does not thrash the
// terminal. Input starting with / is routed to the slash command
// system instead of the chat controller.
//
// # Key Types
//
//   - Model: Bubble Tea model wiring input, viewport, and status bar
//   - RenderLimiter: Frame-rate gate for streaming repaints
//   - KeyMap: Key bindings with help text
package chat
