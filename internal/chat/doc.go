// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the streaming chat controller.
//
// The controller owns the send lifecycle: it appends the user message,
// creates a placeholder reply, streams chunks into it, and finalizes or
// falls back on error. One in-flight stream is allowed at a time;
// Cancel aborts it cooperatively and keeps the partial text.
//
// # Key Types
//
//   - Controller: Send/Cancel lifecycle over a dispatcher
//   - Streamer: Generation backend (satisfied by the API client)
//   - Narrator: Optional speech hook for finished replies
package chat
