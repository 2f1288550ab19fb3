// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists the durable subset of the application state as a
// single JSON value in a SQLite key/value table.
//
// The whole durable state is written under one fixed key on every durable
// transition, and read back once at startup. Partial or corrupt snapshots
// never prevent startup: Load degrades to defaults and logs what it threw
// away.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/mentor-tui/internal/state"
)

// StateKey is the fixed key the whole durable snapshot lives under.
const StateKey = "mentorai_v2"

// SchemaVersion is bumped when the snapshot layout changes incompatibly.
const SchemaVersion = 2

// =============================================================================
// STORE
// =============================================================================

// Store owns the SQLite handle for the state snapshot.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the state database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	// One writer at a time; the dispatcher already serializes writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
PRAGMA journal_mode = WAL;
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrating state schema: %w", err)
	}
	return nil
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// snapshot is the serialized durable subset. Ephemeral fields (active
// session, toasts, sidebar, loading flags) are excluded by construction.
type snapshot struct {
	Version          int                 `json:"version"`
	Sessions         []state.ChatSession `json:"sessions"`
	Documents        []state.Document    `json:"documents"`
	PinnedDocumentID string              `json:"pinnedDocumentId,omitempty"`
	Flashcards       []state.Flashcard   `json:"flashcards"`
	StudyPlans       []state.StudyPlan   `json:"studyPlans"`
	Settings         *state.UserSettings `json:"settings,omitempty"`
}

// Save writes the durable subset of st under StateKey. The write replaces
// the previous snapshot atomically (single-row upsert in one statement).
func (s *Store) Save(st *state.AppState) error {
	snap := snapshot{
		Version:          SchemaVersion,
		Sessions:         st.Sessions,
		Documents:        st.Documents,
		PinnedDocumentID: st.PinnedDocumentID,
		Flashcards:       st.Flashcards,
		StudyPlans:       st.StudyPlans,
		Settings:         &st.Settings,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding state snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		StateKey, data,
	)
	if err != nil {
		return fmt.Errorf("writing state snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot under StateKey and merges it field by field onto
// a fresh default state. A missing or unreadable snapshot yields defaults.
// Ephemeral state always starts clean: no active session, no toasts, no
// loading flags, sidebar expanded.
func (s *Store) Load() (*state.AppState, error) {
	st := state.NewAppState()

	var data []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, StateKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("reading state snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("STORE | discarding corrupt snapshot | key=%s err=%v", StateKey, err)
		return st, nil
	}

	// Merge onto defaults so fields absent from older snapshots keep their
	// default values instead of zeroing out.
	if snap.Sessions != nil {
		st.Sessions = snap.Sessions
	}
	if snap.Documents != nil {
		st.Documents = snap.Documents
	}
	if snap.PinnedDocumentID != "" && documentExists(st.Documents, snap.PinnedDocumentID) {
		st.PinnedDocumentID = snap.PinnedDocumentID
	}
	if snap.Flashcards != nil {
		st.Flashcards = snap.Flashcards
	}
	if snap.StudyPlans != nil {
		st.StudyPlans = snap.StudyPlans
	}
	if snap.Settings != nil {
		st.Settings = *snap.Settings
	}

	return st, nil
}

func documentExists(docs []state.Document, id string) bool {
	for i := range docs {
		if docs[i].ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// PERSISTENCE SUBSCRIBER
// =============================================================================

// Attach registers a write-through subscriber on the dispatcher. Durable
// transitions are saved synchronously; failures are logged and do not
// interrupt the transition.
func (s *Store) Attach(d *state.Dispatcher) {
	d.Subscribe(func(next *state.AppState, a state.Action) {
		if !state.TouchesDurableState(a) {
			return
		}
		if err := s.Save(next); err != nil {
			log.Printf("STORE | save failed | action=%T err=%v", a, err)
		}
	})
}
