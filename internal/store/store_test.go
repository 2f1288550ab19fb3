// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/mentor-tui/internal/state"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptyDatabaseReturnsDefaults(t *testing.T) {
	s := openTestStore(t)

	st, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Sessions) != 0 || len(st.Documents) != 0 {
		t.Error("fresh database should yield empty content")
	}
	if !st.Settings.DemoMode {
		t.Error("fresh database should yield default settings")
	}
	if st.ActiveSessionID != "" {
		t.Error("no session should be active on first load")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	st := state.NewAppState()
	now := time.Now().UTC().Truncate(time.Second)
	st.Sessions = []state.ChatSession{{
		ID:    "s1",
		Title: "Photosynthesis",
		Messages: []state.Message{
			{ID: "m1", Role: state.RoleUser, Content: "explain it", Timestamp: now},
			{ID: "m2", Role: state.RoleModel, Content: "plants convert light", Timestamp: now},
		},
		CreatedAt:    now,
		UpdatedAt:    now,
		AttachedDocs: []string{},
	}}
	st.Documents = []state.Document{{ID: "d1", Name: "bio.txt", Kind: state.DocText, Content: "chapter one", UploadedAt: now}}
	st.PinnedDocumentID = "d1"
	st.Flashcards = []state.Flashcard{{ID: "c1", Front: "Q", Back: "A", Box: 0, NextReview: now}}
	st.StudyPlans = []state.StudyPlan{{ID: "p1", Topic: "biology", CreatedAt: now}}
	st.Settings.Theme = "dark"
	st.Settings.DemoMode = false

	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Sessions) != 1 || got.Sessions[0].Title != "Photosynthesis" {
		t.Errorf("sessions did not survive round trip: %+v", got.Sessions)
	}
	if len(got.Sessions[0].Messages) != 2 || got.Sessions[0].Messages[1].Content != "plants convert light" {
		t.Errorf("messages did not survive round trip")
	}
	if got.PinnedDocumentID != "d1" {
		t.Errorf("pin = %q, want d1", got.PinnedDocumentID)
	}
	if len(got.Flashcards) != 1 || got.Flashcards[0].Front != "Q" {
		t.Errorf("flashcards did not survive round trip")
	}
	if len(got.StudyPlans) != 1 || got.StudyPlans[0].Topic != "biology" {
		t.Errorf("plans did not survive round trip")
	}
	if got.Settings.Theme != "dark" || got.Settings.DemoMode {
		t.Errorf("settings did not survive round trip: %+v", got.Settings)
	}
}

func TestLoadNeverRestoresEphemeralState(t *testing.T) {
	s := openTestStore(t)

	st := state.NewAppState()
	st.Sessions = []state.ChatSession{{ID: "s1", Messages: []state.Message{}}}
	st.ActiveSessionID = "s1"
	st.Toasts = []state.Toast{{ID: "t1", Type: state.ToastError, Message: "boom"}}
	st.SidebarCollapsed = true
	st.ToolLoading[state.ToolQuiz] = true

	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ActiveSessionID != "" {
		t.Error("active session must not be persisted")
	}
	if len(got.Toasts) != 0 {
		t.Error("toasts must not be persisted")
	}
	if got.SidebarCollapsed {
		t.Error("sidebar state must not be persisted")
	}
	if got.ToolLoading[state.ToolQuiz] {
		t.Error("loading flags must not be persisted")
	}
}

func TestLoadDropsDanglingPin(t *testing.T) {
	s := openTestStore(t)

	st := state.NewAppState()
	st.Documents = []state.Document{{ID: "d1", Kind: state.DocText}}
	st.PinnedDocumentID = "d1"
	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Corrupt the invariant by persisting a pin without its document.
	st.Documents = nil
	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PinnedDocumentID != "" {
		t.Errorf("pin = %q, want empty when the document is gone", got.PinnedDocumentID)
	}
}

func TestLoadCorruptSnapshotDegradesToDefaults(t *testing.T) {
	s := openTestStore(t)

	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)`,
		StateKey, []byte("{not json"),
	)
	if err != nil {
		t.Fatalf("seeding corrupt row: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load should not fail on corrupt data: %v", err)
	}
	if len(got.Sessions) != 0 || !got.Settings.DemoMode {
		t.Error("corrupt snapshot should degrade to defaults")
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	s := openTestStore(t)

	st := state.NewAppState()
	st.Sessions = []state.ChatSession{{ID: "s1", Messages: []state.Message{}}}
	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	st.Sessions = nil
	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Errorf("kv rows = %d, want 1 (single fixed key)", count)
	}
}

func TestAttachWritesThroughOnDurableActions(t *testing.T) {
	s := openTestStore(t)

	d := state.NewDispatcher(nil)
	s.Attach(d)

	d.Dispatch(state.NewSession{Session: state.NewSessionEntity("Algebra")})
	d.Dispatch(state.ToggleSidebar{}) // ephemeral, must not change the snapshot

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].Title != "Algebra" {
		t.Errorf("durable action was not written through: %+v", got.Sessions)
	}
	if got.SidebarCollapsed {
		t.Error("ephemeral action leaked into the snapshot")
	}
}
