// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// Input starting with / is parsed against a registry and dispatched to
// a handler instead of being sent to the model. Handlers run as Bubble
// Tea commands, commit their results through the dispatcher (toasts,
// transcript notes, state updates), and report completion with DoneMsg.
//
// # Commands
//
//   - /flashcards, /quiz, /plan, /summarize, /solve, /analyze, /mastery,
//     /image
//   - /doc, /pin, /rmdoc (document library)
//   - /export, /title, /delete, /clear (sessions)
//   - /settings, /help
package commands
