// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import "time"

// Reduce maps (state, action) to a new state. It never mutates its input:
// every branch that changes anything returns a fresh AppState with copies
// of the touched slices and shares everything else. Unknown actions and
// guarded no-ops return the input pointer unchanged.
//
// Only ClearAllSessions touches more than one top-level slice.
func Reduce(s *AppState, a Action) *AppState {
	switch act := a.(type) {

	case NewSession:
		next := *s
		next.Sessions = append([]ChatSession{act.Session}, s.Sessions...)
		next.ActiveSessionID = act.Session.ID
		return &next

	case SetActiveSession:
		next := *s
		next.ActiveSessionID = act.SessionID
		return &next

	case AddMessage:
		idx := sessionIndex(s.Sessions, act.SessionID)
		if idx < 0 {
			return s
		}
		next := *s
		next.Sessions = copySessions(s.Sessions)
		sess := &next.Sessions[idx]
		sess.Messages = append(append([]Message{}, sess.Messages...), act.Message)
		sess.UpdatedAt = time.Now()
		return &next

	case UpdateLastMessage:
		idx := sessionIndex(s.Sessions, act.SessionID)
		if idx < 0 || len(s.Sessions[idx].Messages) == 0 {
			return s
		}
		next := *s
		next.Sessions = copySessions(s.Sessions)
		sess := &next.Sessions[idx]
		msgs := append([]Message{}, sess.Messages...)
		last := &msgs[len(msgs)-1]
		last.Content = act.Content
		last.IsThinking = false
		sess.Messages = msgs
		sess.UpdatedAt = time.Now()
		return &next

	case UpdateSessionTitle:
		idx := sessionIndex(s.Sessions, act.SessionID)
		if idx < 0 {
			return s
		}
		next := *s
		next.Sessions = copySessions(s.Sessions)
		next.Sessions[idx].Title = act.Title
		return &next

	case DeleteSession:
		idx := sessionIndex(s.Sessions, act.SessionID)
		if idx < 0 {
			return s
		}
		next := *s
		next.Sessions = append(append([]ChatSession{}, s.Sessions[:idx]...), s.Sessions[idx+1:]...)
		if s.ActiveSessionID == act.SessionID {
			if len(next.Sessions) > 0 {
				next.ActiveSessionID = next.Sessions[0].ID
			} else {
				next.ActiveSessionID = ""
			}
		}
		return &next

	case ClearAllSessions:
		next := *s
		next.Sessions = []ChatSession{}
		next.ActiveSessionID = ""
		next.Documents = []Document{}
		next.PinnedDocumentID = ""
		next.Flashcards = []Flashcard{}
		next.StudyPlans = []StudyPlan{}
		next.ToolLoading = defaultToolLoading()
		return &next

	case AddDocument:
		next := *s
		next.Documents = append(append([]Document{}, s.Documents...), act.Document)
		return &next

	case PinDocument:
		next := *s
		next.PinnedDocumentID = act.DocumentID
		return &next

	case DeleteDocument:
		next := *s
		docs := make([]Document, 0, len(s.Documents))
		for _, d := range s.Documents {
			if d.ID != act.DocumentID {
				docs = append(docs, d)
			}
		}
		next.Documents = docs
		// Pin invariant: deleting the pinned document clears the pin.
		if s.PinnedDocumentID == act.DocumentID {
			next.PinnedDocumentID = ""
		}
		return &next

	case AddFlashcards:
		next := *s
		next.Flashcards = append(append([]Flashcard{}, s.Flashcards...), act.Cards...)
		next.ToolLoading = copyToolLoading(s.ToolLoading)
		next.ToolLoading[ToolFlashcards] = false
		return &next

	case AddPlan:
		next := *s
		next.StudyPlans = append([]StudyPlan{act.Plan}, s.StudyPlans...)
		return &next

	case TogglePlanItem:
		// Plan activities have no completion IDs to toggle.
		return s

	case UpdateSettings:
		next := *s
		next.Settings = act.Settings
		return &next

	case ToggleSidebar:
		next := *s
		next.SidebarCollapsed = !s.SidebarCollapsed
		return &next

	case AddToast:
		next := *s
		next.Toasts = append(append([]Toast{}, s.Toasts...), act.Toast)
		return &next

	case RemoveToast:
		next := *s
		toasts := make([]Toast, 0, len(s.Toasts))
		for _, t := range s.Toasts {
			if t.ID != act.ToastID {
				toasts = append(toasts, t)
			}
		}
		next.Toasts = toasts
		return &next

	case SetToolLoading:
		next := *s
		next.ToolLoading = copyToolLoading(s.ToolLoading)
		next.ToolLoading[act.Tool] = act.Loading
		return &next

	default:
		return s
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func sessionIndex(sessions []ChatSession, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func copySessions(sessions []ChatSession) []ChatSession {
	return append([]ChatSession{}, sessions...)
}

func copyToolLoading(m map[Tool]bool) map[Tool]bool {
	out := make(map[Tool]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
