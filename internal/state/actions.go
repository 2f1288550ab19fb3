// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

// Action is a request to transform the application state. Concrete actions
// are plain structs; the reducer switches on their type.
type Action interface {
	isAction()
}

// NewSession prepends a session to the session list and makes it active.
type NewSession struct {
	Session ChatSession
}

// SetActiveSession selects an existing session.
type SetActiveSession struct {
	SessionID string
}

// AddMessage appends a message to the named session. Unknown session IDs
// are a silent no-op.
type AddMessage struct {
	SessionID string
	Message   Message
}

// UpdateLastMessage replaces the content of the last message in the named
// session. Used exclusively by the streaming path; a session with zero
// messages is a no-op.
type UpdateLastMessage struct {
	SessionID string
	Content   string
}

// UpdateSessionTitle renames a session.
type UpdateSessionTitle struct {
	SessionID string
	Title     string
}

// DeleteSession removes a session. If it was active, the first remaining
// session (list order) becomes active, or none.
type DeleteSession struct {
	SessionID string
}

// ClearAllSessions is a factory reset of content: sessions, documents,
// pin, flashcards, plans and loading flags. Settings and the sidebar state
// are preserved.
type ClearAllSessions struct{}

// AddDocument appends a document to the library.
type AddDocument struct {
	Document Document
}

// PinDocument sets or clears (empty ID) the pinned document.
type PinDocument struct {
	DocumentID string
}

// DeleteDocument removes a document, clearing the pin if it pointed at it.
type DeleteDocument struct {
	DocumentID string
}

// AddFlashcards appends generated cards and clears the flashcards loading
// flag in the same transition, so there is no window where loading is off
// but the cards have not landed.
type AddFlashcards struct {
	Cards []Flashcard
}

// AddPlan prepends a generated study plan.
type AddPlan struct {
	Plan StudyPlan
}

// TogglePlanItem is accepted for compatibility with older clients but plan
// activities carry no completion IDs, so it transforms nothing.
type TogglePlanItem struct {
	PlanID string
	ItemID string
}

// UpdateSettings replaces the settings wholesale. Callers start from the
// current snapshot's settings and change the fields they mean to change.
type UpdateSettings struct {
	Settings UserSettings
}

// ToggleSidebar flips the sidebar-collapsed flag.
type ToggleSidebar struct{}

// AddToast appends an ephemeral notification.
type AddToast struct {
	Toast Toast
}

// RemoveToast removes a notification by ID.
type RemoveToast struct {
	ToastID string
}

// SetToolLoading sets the loading flag for one tool.
type SetToolLoading struct {
	Tool    Tool
	Loading bool
}

func (NewSession) isAction()         {}
func (SetActiveSession) isAction()   {}
func (AddMessage) isAction()         {}
func (UpdateLastMessage) isAction()  {}
func (UpdateSessionTitle) isAction() {}
func (DeleteSession) isAction()      {}
func (ClearAllSessions) isAction()   {}
func (AddDocument) isAction()        {}
func (PinDocument) isAction()        {}
func (DeleteDocument) isAction()     {}
func (AddFlashcards) isAction()      {}
func (AddPlan) isAction()            {}
func (TogglePlanItem) isAction()     {}
func (UpdateSettings) isAction()     {}
func (ToggleSidebar) isAction()      {}
func (AddToast) isAction()           {}
func (RemoveToast) isAction()        {}
func (SetToolLoading) isAction()     {}

// TouchesDurableState reports whether an action can modify one of the
// persisted state slices. The persistence subscriber uses this to decide
// when to write through to storage.
func TouchesDurableState(a Action) bool {
	switch a.(type) {
	case SetActiveSession, ToggleSidebar, AddToast, RemoveToast, SetToolLoading, TogglePlanItem:
		return false
	default:
		return true
	}
}
