// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/mentor-tui/internal/gemini"
	"github.com/jeranaias/mentor-tui/internal/state"
)

// fakeGenerator returns a scripted response and records the last request.
type fakeGenerator struct {
	response string
	err      error
	lastReq  *gemini.GenerateRequest
	model    string
}

func (f *fakeGenerator) GenerateText(_ context.Context, model string, req *gemini.GenerateRequest) (string, error) {
	f.lastReq = req
	f.model = model
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestService(g *fakeGenerator) (*Service, *state.Dispatcher) {
	d := state.NewDispatcher(nil)
	return NewService(d, g), d
}

func TestGenerateFlashcards(t *testing.T) {
	g := &fakeGenerator{response: `{"flashcards":[
		{"front":"What is ATP?","back":"Energy currency","category":"biology","difficulty":"easy"},
		{"front":"Define osmosis","back":"Water diffusion","category":"biology","difficulty":"medium"}
	]}`}
	s, d := newTestService(g)

	cards, err := s.GenerateFlashcards(context.Background(), "cell biology")
	if err != nil {
		t.Fatalf("GenerateFlashcards: %v", err)
	}

	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
	for _, c := range cards {
		if c.ID == "" {
			t.Error("cards need generated IDs")
		}
		if c.Box != 0 {
			t.Errorf("box = %d, want 0 for new cards", c.Box)
		}
		if c.NextReview.IsZero() {
			t.Error("new cards should be due immediately")
		}
	}

	// Committed to state, loading flag cleared by the same transition.
	st := d.State()
	if len(st.Flashcards) != 2 {
		t.Errorf("state flashcards = %d, want 2", len(st.Flashcards))
	}
	if st.ToolLoading[state.ToolFlashcards] {
		t.Error("loading flag should be clear after commit")
	}

	// Request shape: fast model, JSON mode, card count in prompt.
	if g.model != gemini.ModelFast {
		t.Errorf("model = %q, want fast model", g.model)
	}
	if g.lastReq.GenerationConfig.ResponseMimeType != "application/json" {
		t.Error("structured calls must request JSON output")
	}
	if !strings.Contains(g.lastReq.Contents[0].Parts[0].Text, "exactly 8") {
		t.Error("prompt should pin the card count")
	}
}

func TestGenerateFlashcards_ToleratesProseWrapping(t *testing.T) {
	g := &fakeGenerator{response: `Sure! Here you go: {"flashcards":[{"front":"Q","back":"A"}]}`}
	s, _ := newTestService(g)

	cards, err := s.GenerateFlashcards(context.Background(), "topic")
	if err != nil {
		t.Fatalf("GenerateFlashcards: %v", err)
	}
	if len(cards) != 1 || cards[0].Front != "Q" {
		t.Errorf("cards = %+v", cards)
	}
}

func TestGenerateFlashcards_FailureClearsLoadingFlag(t *testing.T) {
	g := &fakeGenerator{err: errors.New("boom")}
	s, d := newTestService(g)

	if _, err := s.GenerateFlashcards(context.Background(), "topic"); err == nil {
		t.Fatal("expected error")
	}
	if d.State().ToolLoading[state.ToolFlashcards] {
		t.Error("loading flag leaked after failure")
	}
	if len(d.State().Flashcards) != 0 {
		t.Error("no cards should be committed on failure")
	}
}

func TestGenerateQuiz(t *testing.T) {
	g := &fakeGenerator{response: `{"quiz":[
		{"question":"2+2?","options":["3","4","5","6"],"correctAnswer":1,"explanation":"basic sum","difficulty":"easy"}
	]}`}
	s, d := newTestService(g)

	qs, err := s.GenerateQuiz(context.Background(), "arithmetic", 5)
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("questions = %d, want 1", len(qs))
	}
	if qs[0].CorrectIndex != 1 || len(qs[0].Options) != 4 {
		t.Errorf("question = %+v", qs[0])
	}
	if !strings.Contains(g.lastReq.Contents[0].Parts[0].Text, "5 multiple-choice") {
		t.Error("prompt should carry the requested count")
	}
	if d.State().ToolLoading[state.ToolQuiz] {
		t.Error("loading flag should be released")
	}
	// Quizzes are ephemeral; nothing lands in durable state.
}

func TestGenerateStudyPlan(t *testing.T) {
	g := &fakeGenerator{response: `{"plan":{"overview":"One focused week.","weeks":[
		{"weekNumber":1,"focus":"foundations","days":[
			{"day":1,"milestone":"basics done","topics":["intro"],"activities":[
				{"type":"reading","duration":30,"description":"read chapter 1"}
			]}
		]}
	]}}`}
	s, d := newTestService(g)

	plan, err := s.GenerateStudyPlan(context.Background(), "linear algebra")
	if err != nil {
		t.Fatalf("GenerateStudyPlan: %v", err)
	}
	if plan.Topic != "linear algebra" || plan.Overview != "One focused week." {
		t.Errorf("plan = %+v", plan)
	}
	if len(plan.Weeks) != 1 || plan.Weeks[0].Days[0].Activities[0].Duration != 30 {
		t.Errorf("plan structure = %+v", plan.Weeks)
	}

	st := d.State()
	if len(st.StudyPlans) != 1 || st.StudyPlans[0].ID != plan.ID {
		t.Error("plan should be committed to state")
	}
	if st.ToolLoading[state.ToolPlanner] {
		t.Error("loading flag should be released")
	}
}

func TestSummarizeText(t *testing.T) {
	g := &fakeGenerator{response: "1. Key point"}
	s, _ := newTestService(g)

	out, err := s.SummarizeText(context.Background(), "long document text")
	if err != nil {
		t.Fatalf("SummarizeText: %v", err)
	}
	if out != "1. Key point" {
		t.Errorf("summary = %q", out)
	}
	if g.lastReq.SystemInstruction.Parts[0].Text != "Be concise and structured." {
		t.Error("summarizer uses its own terse system instruction")
	}
}

func TestSolveProblem_MathVsCode(t *testing.T) {
	g := &fakeGenerator{response: "solution"}
	s, _ := newTestService(g)

	if _, err := s.SolveProblem(context.Background(), "integrate x^2", ProblemMath); err != nil {
		t.Fatalf("SolveProblem: %v", err)
	}
	if !strings.Contains(g.lastReq.Contents[0].Parts[0].Text, "LaTeX") {
		t.Error("math prompt should request LaTeX")
	}

	if _, err := s.SolveProblem(context.Background(), "reverse a list", ProblemCode); err != nil {
		t.Fatalf("SolveProblem: %v", err)
	}
	if !strings.Contains(g.lastReq.Contents[0].Parts[0].Text, "markdown code blocks") {
		t.Error("code prompt should request code blocks")
	}
}

func TestAnalyzeCode(t *testing.T) {
	g := &fakeGenerator{response: `{"summary":"fine","bugs":["off by one"],"optimizations":[],"complexity":"O(n)","rating":7}`}
	s, _ := newTestService(g)

	analysis, err := s.AnalyzeCode(context.Background(), "for i := 0; i <= n; i++ {}", "go")
	if err != nil {
		t.Fatalf("AnalyzeCode: %v", err)
	}
	if analysis.Rating != 7 || len(analysis.Bugs) != 1 {
		t.Errorf("analysis = %+v", analysis)
	}
	// Deep analysis runs on the chat model.
	if g.model != gemini.ModelChat {
		t.Errorf("model = %q, want chat model", g.model)
	}
}

func TestPredictMastery(t *testing.T) {
	g := &fakeGenerator{response: "You are 80% of the way there!"}
	s, _ := newTestService(g)

	stats := MasteryStats{Sessions: 3, Flashcards: 16}
	got := s.PredictMastery(context.Background(), stats)
	if got != "You are 80% of the way there!" {
		t.Errorf("prediction = %q", got)
	}

	// The stats reach the prompt as JSON.
	var embedded MasteryStats
	prompt := g.lastReq.Contents[0].Parts[0].Text
	start := strings.IndexByte(prompt, '{')
	end := strings.LastIndexByte(prompt, '}')
	if err := json.Unmarshal([]byte(prompt[start:end+1]), &embedded); err != nil {
		t.Fatalf("stats not embedded as JSON: %v", err)
	}
	if embedded != stats {
		t.Errorf("embedded stats = %+v", embedded)
	}
}

func TestPredictMastery_FallsBackOnError(t *testing.T) {
	g := &fakeGenerator{err: errors.New("quota")}
	s, _ := newTestService(g)

	if got := s.PredictMastery(context.Background(), MasteryStats{}); got != MasteryFallback {
		t.Errorf("prediction = %q, want fallback", got)
	}
}

func TestStatsFromState(t *testing.T) {
	st := state.NewAppState()
	st.Sessions = make([]state.ChatSession, 2)
	st.Flashcards = make([]state.Flashcard, 8)

	stats := StatsFromState(st)
	if stats.Sessions != 2 || stats.Flashcards != 8 || stats.Documents != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
