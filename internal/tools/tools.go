// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools implements the auxiliary generation features: flashcards,
// quizzes, study plans, summaries, the problem solver, code analysis and
// mastery prediction.
//
// Each tool call follows the same shape: set the loading flag, run a
// structured request against the fast model, parse the JSON out of the
// response, commit the result through the dispatcher, and always clear
// the loading flag on the way out.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/mentor-tui/internal/gemini"
	"github.com/jeranaias/mentor-tui/internal/state"
)

// FlashcardCount is how many cards one generation produces.
const FlashcardCount = 8

// Generator is the slice of the Gemini client the tools need.
type Generator interface {
	GenerateText(ctx context.Context, model string, req *gemini.GenerateRequest) (string, error)
}

// Service runs tool calls and commits their results.
type Service struct {
	dispatcher *state.Dispatcher
	generator  Generator
}

// NewService creates a tool service over the given dispatcher and client.
func NewService(d *state.Dispatcher, g Generator) *Service {
	return &Service{dispatcher: d, generator: g}
}

// setLoading flips a tool's loading flag and returns a release func for
// the tools whose commit action does not clear the flag itself.
func (s *Service) setLoading(tool state.Tool) func() {
	s.dispatcher.Dispatch(state.SetToolLoading{Tool: tool, Loading: true})
	return func() {
		s.dispatcher.Dispatch(state.SetToolLoading{Tool: tool, Loading: false})
	}
}

// =============================================================================
// FLASHCARDS
// =============================================================================

type flashcardPayload struct {
	Flashcards []struct {
		Front      string `json:"front"`
		Back       string `json:"back"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	} `json:"flashcards"`
}

// GenerateFlashcards produces FlashcardCount cards on a topic and commits
// them. New cards start in box 0 with an immediate review date.
// The commit clears the loading flag atomically with the append; only
// failure paths clear it explicitly.
func (s *Service) GenerateFlashcards(ctx context.Context, topic string) ([]state.Flashcard, error) {
	release := s.setLoading(state.ToolFlashcards)

	prompt := fmt.Sprintf("Generate exactly %d high-quality flashcards on: %q. Mix difficulty levels. Return valid JSON only.", FlashcardCount, topic)
	text, err := s.generator.GenerateText(ctx, gemini.ModelFast, structuredRequest(prompt, flashcardsSchema()))
	if err != nil {
		release()
		return nil, fmt.Errorf("generating flashcards: %w", err)
	}

	var payload flashcardPayload
	if err := gemini.ExtractJSON(text, &payload); err != nil {
		release()
		return nil, fmt.Errorf("parsing flashcards: %w", err)
	}

	now := time.Now()
	cards := make([]state.Flashcard, 0, len(payload.Flashcards))
	for _, c := range payload.Flashcards {
		cards = append(cards, state.Flashcard{
			ID:         uuid.NewString(),
			Front:      c.Front,
			Back:       c.Back,
			Category:   c.Category,
			Difficulty: c.Difficulty,
			Box:        0,
			NextReview: now,
		})
	}

	s.dispatcher.Dispatch(state.AddFlashcards{Cards: cards})
	return cards, nil
}

// =============================================================================
// QUIZ
// =============================================================================

type quizPayload struct {
	Quiz []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
		Explanation   string   `json:"explanation"`
		Difficulty    string   `json:"difficulty"`
	} `json:"quiz"`
}

// GenerateQuiz produces count multiple-choice questions on a topic.
// Quiz results are ephemeral: they are returned, not persisted.
func (s *Service) GenerateQuiz(ctx context.Context, topic string, count int) ([]state.QuizQuestion, error) {
	release := s.setLoading(state.ToolQuiz)
	defer release()

	prompt := fmt.Sprintf("Create an adaptive quiz with %d multiple-choice questions on: %q. Return valid JSON only.", count, topic)
	text, err := s.generator.GenerateText(ctx, gemini.ModelFast, structuredRequest(prompt, quizSchema()))
	if err != nil {
		return nil, fmt.Errorf("generating quiz: %w", err)
	}

	var payload quizPayload
	if err := gemini.ExtractJSON(text, &payload); err != nil {
		return nil, fmt.Errorf("parsing quiz: %w", err)
	}

	questions := make([]state.QuizQuestion, 0, len(payload.Quiz))
	for _, q := range payload.Quiz {
		questions = append(questions, state.QuizQuestion{
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectAnswer,
			Explanation:  q.Explanation,
			Difficulty:   q.Difficulty,
		})
	}
	return questions, nil
}

// =============================================================================
// STUDY PLAN
// =============================================================================

type planPayload struct {
	Plan struct {
		Overview string                `json:"overview"`
		Weeks    []state.StudyPlanWeek `json:"weeks"`
	} `json:"plan"`
}

// GenerateStudyPlan produces a one-week plan for a topic and commits it.
func (s *Service) GenerateStudyPlan(ctx context.Context, topic string) (*state.StudyPlan, error) {
	release := s.setLoading(state.ToolPlanner)
	defer release()

	prompt := fmt.Sprintf("Create a 1-week personalized study plan for: %q. Return valid JSON.", topic)
	text, err := s.generator.GenerateText(ctx, gemini.ModelFast, structuredRequest(prompt, planSchema()))
	if err != nil {
		return nil, fmt.Errorf("generating study plan: %w", err)
	}

	var payload planPayload
	if err := gemini.ExtractJSON(text, &payload); err != nil {
		return nil, fmt.Errorf("parsing study plan: %w", err)
	}

	plan := state.StudyPlan{
		ID:        uuid.NewString(),
		Topic:     topic,
		Overview:  payload.Plan.Overview,
		Weeks:     payload.Plan.Weeks,
		CreatedAt: time.Now(),
	}
	s.dispatcher.Dispatch(state.AddPlan{Plan: plan})
	return &plan, nil
}

// =============================================================================
// SUMMARIZER
// =============================================================================

// SummarizeText produces a structured summary of a document's text.
func (s *Service) SummarizeText(ctx context.Context, text string) (string, error) {
	release := s.setLoading(state.ToolSummarizer)
	defer release()

	prompt := "Analyze this document and provide:\n1. Summary (3-5 key points)\n2. Main concepts\n3. Difficulty assessment\n\nText: " + text
	out, err := s.generator.GenerateText(ctx, gemini.ModelFast, gemini.TextRequest(prompt, "Be concise and structured.", nil))
	if err != nil {
		return "", fmt.Errorf("summarizing: %w", err)
	}
	if out == "" {
		out = "Could not summarize."
	}
	return out, nil
}

// =============================================================================
// SOLVER
// =============================================================================

// ProblemType selects the solver's output conventions.
type ProblemType string

const (
	ProblemMath ProblemType = "math"
	ProblemCode ProblemType = "code"
)

// SolveProblem produces a worked solution. Math answers use LaTeX, code
// answers use fenced markdown blocks.
func (s *Service) SolveProblem(ctx context.Context, problem string, kind ProblemType) (string, error) {
	release := s.setLoading(state.ToolSolver)
	defer release()

	var prompt string
	if kind == ProblemMath {
		prompt = "Solve this math problem. Use <thinking> tags to plan. Use LaTeX for math ($...$). Problem: " + problem
	} else {
		prompt = "Solve this coding problem. Use <thinking> tags to plan. Use markdown code blocks. Problem: " + problem
	}

	out, err := s.generator.GenerateText(ctx, gemini.ModelFast, gemini.TextRequest(prompt, gemini.SystemPrompt, nil))
	if err != nil {
		return "", fmt.Errorf("solving problem: %w", err)
	}
	if out == "" {
		out = "Could not solve."
	}
	return out, nil
}

// =============================================================================
// CODE ANALYSIS
// =============================================================================

// CodeAnalysis is a structured code review.
type CodeAnalysis struct {
	Summary       string   `json:"summary"`
	Bugs          []string `json:"bugs"`
	Optimizations []string `json:"optimizations"`
	Complexity    string   `json:"complexity"`
	Rating        int      `json:"rating"`
}

// AnalyzeCode reviews a snippet with the chat model, which handles code
// better than the fast one.
func (s *Service) AnalyzeCode(ctx context.Context, code, language string) (*CodeAnalysis, error) {
	prompt := "Analyze this " + language + " code. Return valid JSON only.\nCode:\n```" + language + "\n" + code + "\n```"

	req := structuredRequest(prompt, codeAnalysisSchema())
	text, err := s.generator.GenerateText(ctx, gemini.ModelChat, req)
	if err != nil {
		return nil, fmt.Errorf("analyzing code: %w", err)
	}

	var analysis CodeAnalysis
	if err := gemini.ExtractJSON(text, &analysis); err != nil {
		return nil, fmt.Errorf("parsing code analysis: %w", err)
	}
	return &analysis, nil
}

// =============================================================================
// MASTERY PREDICTION
// =============================================================================

// MasteryFallback is returned when prediction fails; the feature is
// decorative and must never surface an error.
const MasteryFallback = "Keep studying to reach mastery!"

// MasteryStats summarizes study activity for the prediction prompt.
type MasteryStats struct {
	Sessions   int `json:"sessions"`
	Flashcards int `json:"flashcards"`
	Documents  int `json:"documents"`
	StudyPlans int `json:"studyPlans"`
}

// StatsFromState derives mastery stats from the current state.
func StatsFromState(st *state.AppState) MasteryStats {
	return MasteryStats{
		Sessions:   len(st.Sessions),
		Flashcards: len(st.Flashcards),
		Documents:  len(st.Documents),
		StudyPlans: len(st.StudyPlans),
	}
}

// PredictMastery produces a short encouragement string from study stats.
// Failures degrade to MasteryFallback.
func (s *Service) PredictMastery(ctx context.Context, stats MasteryStats) string {
	b, err := json.Marshal(stats)
	if err != nil {
		return MasteryFallback
	}

	prompt := "Predict mastery based on these stats: " + string(b) + ". Return a short encouraging prediction string (max 20 words)."
	out, err := s.generator.GenerateText(ctx, gemini.ModelFast, gemini.TextRequest(prompt, "", nil))
	if err != nil || out == "" {
		if err != nil {
			log.Printf("TOOLS | mastery prediction failed | err=%v", err)
		}
		return MasteryFallback
	}
	return out
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// structuredRequest builds a JSON-mode request with a response schema.
func structuredRequest(prompt string, schema *Schema) *gemini.GenerateRequest {
	return gemini.TextRequest(prompt, "", &gemini.GenerationConfig{
		Temperature:      gemini.DefaultTemperature,
		ResponseMimeType: "application/json",
		ResponseSchema:   schema.raw(),
	})
}
