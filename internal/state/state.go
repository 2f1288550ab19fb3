// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state contains the application state aggregate and the pure
// reducer that is its only mutation path.
//
// Every entity the app works with (chat sessions, documents, flashcards,
// study plans, settings, toasts) lives on AppState. View code and the
// streaming controller never modify state directly: they dispatch actions
// through a Dispatcher and read the resulting snapshot.
package state

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLES AND KINDS
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// DocKind tags a document's content representation.
type DocKind string

const (
	DocText  DocKind = "text"
	DocPDF   DocKind = "pdf"
	DocWord  DocKind = "docx"
	DocImage DocKind = "image"
	DocAudio DocKind = "audio"
	DocOther DocKind = "other"
)

// TextLike reports whether the document content is usable as plain text
// context for the model.
func (k DocKind) TextLike() bool {
	return k == DocText || k == DocPDF || k == DocOther
}

// Tool identifies one of the auxiliary generation features.
type Tool string

const (
	ToolFlashcards Tool = "flashcards"
	ToolQuiz       Tool = "quiz"
	ToolSolver     Tool = "solver"
	ToolSummarizer Tool = "summarizer"
	ToolPlanner    Tool = "planner"
)

// Tools lists every tool with a loading flag.
var Tools = []Tool{ToolFlashcards, ToolQuiz, ToolSolver, ToolSummarizer, ToolPlanner}

// ToastType tags toast severity.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastInfo    ToastType = "info"
	ToastWarn    ToastType = "warn"
	ToastError   ToastType = "error"
)

// =============================================================================
// ENTITIES
// =============================================================================

// Attachment is a file attached inline to a single message.
type Attachment struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"` // data URL for binaries
	Size    int64  `json:"size"`
}

// Message is one entry in a session transcript. Content is mutable only
// for the most recent model message while a response is streaming.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// IsThinking is a display hint while the placeholder is empty; it is
	// never authoritative for content state.
	IsThinking bool `json:"isThinking,omitempty"`
}

// ChatSession is one conversation. Messages are append-only except for the
// in-place update of the last element during streaming.
type ChatSession struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	AttachedDocs []string  `json:"attachedDocs"` // doc IDs; stored, not consulted
}

// Document is an uploaded study material. Content holds UTF-8 text for
// text-like kinds and a base64 data URL for binary kinds.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       DocKind   `json:"type"`
	Content    string    `json:"content"`
	MimeType   string    `json:"mimeType,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	Simulated  bool      `json:"isSimulated"`
}

// Flashcard is one generated study card. Box and NextReview are populated
// at creation for spaced repetition but no scheduler advances them.
type Flashcard struct {
	ID         string    `json:"id"`
	Front      string    `json:"front"`
	Back       string    `json:"back"`
	Category   string    `json:"category,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"` // easy|medium|hard
	Box        int       `json:"box"`                  // 0-5
	NextReview time.Time `json:"nextReview"`
}

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// StudyPlanActivity is a single activity inside a plan day.
type StudyPlanActivity struct {
	Type        string `json:"type"`
	Duration    int    `json:"duration"` // minutes
	Description string `json:"description"`
}

// StudyPlanDay is one day of a study plan week.
type StudyPlanDay struct {
	Day        int                 `json:"day"`
	Topics     []string            `json:"topics"`
	Activities []StudyPlanActivity `json:"activities"`
	Milestone  string              `json:"milestone"`
}

// StudyPlanWeek groups plan days under a weekly focus.
type StudyPlanWeek struct {
	WeekNumber int            `json:"weekNumber"`
	Focus      string         `json:"focus"`
	Days       []StudyPlanDay `json:"days"`
}

// StudyPlan is one generated study plan.
type StudyPlan struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Overview  string          `json:"overview,omitempty"`
	Weeks     []StudyPlanWeek `json:"weeks"`
	CreatedAt time.Time       `json:"createdAt"`
}

// UserSettings holds user preferences.
type UserSettings struct {
	VoiceEnabled bool   `json:"isVoiceEnabled"`
	AutoRead     bool   `json:"autoRead"`
	DemoMode     bool   `json:"demoMode"` // true: direct API key, false: proxy
	APIKey       string `json:"apiKey,omitempty"`
	Theme        string `json:"theme"`    // light|dark|system
	Language     string `json:"language"` // BCP 47-ish tag
}

// Toast is an ephemeral notification. Toasts never survive a reload.
type Toast struct {
	ID      string    `json:"id"`
	Type    ToastType `json:"type"`
	Message string    `json:"message"`
}

// =============================================================================
// APP STATE
// =============================================================================

// AppState is the root aggregate. It is treated as immutable: the reducer
// returns a new AppState with structurally shared untouched slices.
//
// Invariants:
//   - ActiveSessionID, if non-empty, names an entry in Sessions.
//   - PinnedDocumentID, if non-empty, names an entry in Documents.
type AppState struct {
	Sessions         []ChatSession `json:"sessions"`
	ActiveSessionID  string        `json:"-"`
	Documents        []Document    `json:"documents"`
	PinnedDocumentID string        `json:"pinnedDocumentId,omitempty"`
	Flashcards       []Flashcard   `json:"flashcards"`
	StudyPlans       []StudyPlan   `json:"studyPlans"`
	Settings         UserSettings  `json:"settings"`

	SidebarCollapsed bool          `json:"-"`
	Toasts           []Toast       `json:"-"`
	ToolLoading      map[Tool]bool `json:"-"`
}

// DefaultSettings returns the initial user settings.
func DefaultSettings() UserSettings {
	return UserSettings{
		VoiceEnabled: false,
		AutoRead:     false,
		DemoMode:     true,
		Theme:        "light",
		Language:     "en",
	}
}

// NewAppState returns the initial application state.
func NewAppState() *AppState {
	return &AppState{
		Sessions:    []ChatSession{},
		Documents:   []Document{},
		Flashcards:  []Flashcard{},
		StudyPlans:  []StudyPlan{},
		Settings:    DefaultSettings(),
		Toasts:      []Toast{},
		ToolLoading: defaultToolLoading(),
	}
}

func defaultToolLoading() map[Tool]bool {
	m := make(map[Tool]bool, len(Tools))
	for _, tool := range Tools {
		m[tool] = false
	}
	return m
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Session returns the session with the given ID, or nil.
func (s *AppState) Session(id string) *ChatSession {
	for i := range s.Sessions {
		if s.Sessions[i].ID == id {
			return &s.Sessions[i]
		}
	}
	return nil
}

// ActiveSession returns the currently active session, or nil.
func (s *AppState) ActiveSession() *ChatSession {
	if s.ActiveSessionID == "" {
		return nil
	}
	return s.Session(s.ActiveSessionID)
}

// DocumentByID returns the document with the given ID, or nil.
func (s *AppState) DocumentByID(id string) *Document {
	for i := range s.Documents {
		if s.Documents[i].ID == id {
			return &s.Documents[i]
		}
	}
	return nil
}

// PinnedDocument returns the pinned document, or nil if none is pinned.
func (s *AppState) PinnedDocument() *Document {
	if s.PinnedDocumentID == "" {
		return nil
	}
	return s.DocumentByID(s.PinnedDocumentID)
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewSessionEntity creates an empty chat session.
func NewSessionEntity(title string) ChatSession {
	now := time.Now()
	return ChatSession{
		ID:           uuid.NewString(),
		Title:        title,
		Messages:     []Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
		AttachedDocs: []string{},
	}
}

// NewUserMessage creates a user message, optionally with attachments.
func NewUserMessage(content string, attachments ...Attachment) Message {
	return Message{
		ID:          uuid.NewString(),
		Role:        RoleUser,
		Content:     content,
		Timestamp:   time.Now(),
		Attachments: attachments,
	}
}

// NewPlaceholderMessage creates the empty model message the streaming
// controller fills in incrementally.
func NewPlaceholderMessage() Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       RoleModel,
		Timestamp:  time.Now(),
		IsThinking: true,
	}
}

// NewToast creates a toast notification.
func NewToast(kind ToastType, message string) Toast {
	return Toast{ID: uuid.NewString(), Type: kind, Message: message}
}
