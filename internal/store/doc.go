// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists application state to a local SQLite database.
//
// State is stored as a single JSON snapshot under a fixed key, written
// through on every durable transition. A corrupt snapshot degrades to a
// fresh state instead of failing startup.
//
// # Usage
//
//	st, err := store.Open(path)
//	if err != nil { ... }
//	defer st.Close()
//
//	snapshot, err := st.Load()
//	d := state.NewDispatcher(snapshot)
//	st.Attach(d) // write-through on durable transitions
package store
