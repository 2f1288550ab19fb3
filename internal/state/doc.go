// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state implements the application state model for mentor.
//
// All mutable state lives in a single AppState value. State changes flow
// through a pure reducer: every mutation is expressed as an Action, and
// Reduce produces a new snapshot without touching the old one. The
// Dispatcher serializes dispatches and notifies subscribers of committed
// transitions.
//
// # Key Types
//
//   - AppState: The complete application state snapshot
//   - Action: Marker interface for state transitions
//   - Dispatcher: Serialized dispatch with subscriber notification
//   - ChatSession, Message, Document: Core entities
//
// # Invariants
//
//   - Snapshots are immutable; the reducer copies before writing
//   - A rejected action returns the same snapshot pointer, and no
//     subscriber is notified
//   - Subscribers observe transitions in dispatch order
//
// # Usage
//
//	d := state.NewDispatcher(nil)
//	d.Subscribe(func(next *state.AppState, a state.Action) {
//	    // persist, repaint, ...
//	})
//	d.Dispatch(state.NewSession{Session: state.NewSessionEntity("calculus")})
package state
