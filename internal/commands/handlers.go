// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/mentor-tui/internal/docs"
	"github.com/jeranaias/mentor-tui/internal/export"
	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/tools"
)

// toolTimeout bounds one tool invocation end to end.
const toolTimeout = 2 * time.Minute

// =============================================================================
// HELPERS
// =============================================================================

// ensureSession returns the active session ID, creating a session first
// if none is active.
func ensureSession(ctx *Context, title string) string {
	if s := ctx.Dispatcher.State().ActiveSession(); s != nil {
		return s.ID
	}
	sess := state.NewSessionEntity(title)
	ctx.Dispatcher.Dispatch(state.NewSession{Session: sess})
	return sess.ID
}

// note appends a model message to the session so tool output lands in
// the transcript alongside chat replies.
func note(ctx *Context, sessionID, content string) {
	ctx.Dispatcher.Dispatch(state.AddMessage{
		SessionID: sessionID,
		Message: state.Message{
			ID:        uuid.NewString(),
			Role:      state.RoleModel,
			Content:   content,
			Timestamp: time.Now(),
		},
	})
}

func toast(ctx *Context, kind state.ToastType, message string) {
	ctx.Dispatcher.Dispatch(state.AddToast{Toast: state.NewToast(kind, message)})
}

func usageErr(ctx *Context, usage string) tea.Cmd {
	return func() tea.Msg {
		toast(ctx, state.ToastWarn, "Usage: "+usage)
		return DoneMsg{}
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelp(r *Registry) func(ctx *Context, res ParseResult) tea.Cmd {
	return func(ctx *Context, res ParseResult) tea.Cmd {
		return func() tea.Msg {
			note(ctx, ensureSession(ctx, "Commands"), r.HelpText())
			return DoneMsg{}
		}
	}
}

func handleFlashcards(ctx *Context, res ParseResult) tea.Cmd {
	topic := res.RawArgs
	if topic == "" {
		return usageErr(ctx, "/flashcards <topic>")
	}
	return func() tea.Msg {
		tctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		defer cancel()

		cards, err := ctx.Tools.GenerateFlashcards(tctx, topic)
		if err != nil {
			return DoneMsg{Err: err}
		}
		toast(ctx, state.ToastSuccess, fmt.Sprintf("%d flashcards added for %q", len(cards), topic))
		return DoneMsg{}
	}
}

func handleQuiz(ctx *Context, res ParseResult) tea.Cmd {
	if len(res.Args) == 0 {
		return usageErr(ctx, "/quiz <topic> [count]")
	}

	topic := res.RawArgs
	count := 5
	// A trailing number is the question count, not part of the topic.
	if len(res.Args) > 1 {
		if n, err := strconv.Atoi(res.Args[len(res.Args)-1]); err == nil {
			count = n
			topic = strings.TrimSpace(strings.TrimSuffix(res.RawArgs, res.Args[len(res.Args)-1]))
		}
	}

	return func() tea.Msg {
		tctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		defer cancel()

		questions, err := ctx.Tools.GenerateQuiz(tctx, topic, count)
		if err != nil {
			return DoneMsg{Err: err}
		}
		id := ensureSession(ctx, "Quiz: "+topic)
		note(ctx, id, formatQuiz(topic, questions))
		return DoneMsg{}
	}
}

func handlePlan(ctx *Context, res ParseResult) tea.Cmd {
	topic := res.RawArgs
	if topic == "" {
		return usageErr(ctx, "/plan <topic>")
	}
	return func() tea.Msg {
		tctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		defer cancel()

		plan, err := ctx.Tools.GenerateStudyPlan(tctx, topic)
		if err != nil {
			return DoneMsg{Err: err}
		}
		toast(ctx, state.ToastSuccess, fmt.Sprintf("Study plan created: %s", plan.Topic))
		return DoneMsg{}
	}
}

func handleSummarize(ctx *Context, res ParseResult) tea.Cmd {
	text := res.RawArgs
	if text == "" {
		return usageErr(ctx, "/summarize <text>")
	}
	return func() tea.Msg {
		tctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		defer cancel()

		summary, err := ctx.Tools.SummarizeText(tctx, text)
		if err != nil {
			return DoneMsg{Err: err}
		}
		note(ctx, ensureSession(ctx, "Summary"), summary)
		return DoneMsg{}
	}
}

func handleSolve(ctx *Context, res ParseResult) tea.Cmd {
	kind := tools.ProblemMath
	problem := res.RawArgs
	if len(res.Args) > 0 {
		switch res.Args[0] {
		case "math":
			problem = strings.TrimSpace(strings.TrimPrefix(problem, "math"))
		case "code":
			kind = tools.ProblemCode
			problem = strings.TrimSpace(strings.TrimPrefix(problem, "code"))
		}
	}
	if problem == "" {
		return usageErr(ctx, "/solve [math|code] <problem>")
	}

	return func() tea.Msg {
		tctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		defer cancel()

		solution, err := ctx.Tools.SolveProblem(tctx, problem, kind)
		if err != nil {
			return DoneMsg{Err: err}
		}
		note(ctx, ensureSession(ctx, "Problem"), solution)
		return DoneMsg{}
	}
}

func handleAnalyze(ctx *Context, res ParseResult) tea.Cmd {
	if len(res.Args) < 2 {
		return usageErr(ctx, "/analyze <language> <code>")
	}
	language := res.Args[0]
	code := strings.TrimSpace(strings.TrimPrefix(res.RawArgs, language))

	return func() tea.Msg {
		tctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		defer cancel()

		analysis, err := ctx.Tools.AnalyzeCode(tctx, code, language)
		if err != nil {
			return DoneMsg{Err: err}
		}
		note(ctx, ensureSession(ctx, "Code review"), formatAnalysis(language, analysis))
		return DoneMsg{}
	}
}

func handleMastery(ctx *Context, res ParseResult) tea.Cmd {
	return func() tea.Msg {
		tctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
		defer cancel()

		stats := tools.StatsFromState(ctx.Dispatcher.State())
		prediction := ctx.Tools.PredictMastery(tctx, stats)
		note(ctx, ensureSession(ctx, "Mastery"), prediction)
		return DoneMsg{}
	}
}

func handleImage(ctx *Context, res ParseResult) tea.Cmd {
	if len(res.Args) == 0 {
		return usageErr(ctx, "/image <path> [prompt]")
	}
	path := res.Args[0]
	prompt := strings.TrimSpace(strings.TrimPrefix(res.RawArgs, path))

	return func() tea.Msg {
		if ctx.Chat == nil {
			return DoneMsg{Err: fmt.Errorf("chat is not available")}
		}
		dataURL, err := docs.ChatImageFromFile(path)
		if err != nil {
			return DoneMsg{Err: err}
		}
		ensureSession(ctx, "Image question")
		return DoneMsg{Err: ctx.Chat.Send(context.Background(), prompt, dataURL)}
	}
}

func handleDoc(ctx *Context, res ParseResult) tea.Cmd {
	if res.RawArgs == "" {
		return usageErr(ctx, "/doc <path>")
	}
	path := res.RawArgs
	return func() tea.Msg {
		doc, err := docs.FromFile(path)
		if err != nil {
			return DoneMsg{Err: err}
		}
		ctx.Dispatcher.Dispatch(state.AddDocument{Document: doc})
		toast(ctx, state.ToastSuccess, "Content indexed successfully")
		return DoneMsg{}
	}
}

func handlePin(ctx *Context, res ParseResult) tea.Cmd {
	if res.RawArgs == "" {
		return usageErr(ctx, "/pin <name>")
	}
	name := res.RawArgs
	return func() tea.Msg {
		doc := findDocument(ctx.Dispatcher.State(), name)
		if doc == nil {
			return DoneMsg{Err: fmt.Errorf("no document matching %q", name)}
		}
		if !doc.Kind.TextLike() {
			return DoneMsg{Err: fmt.Errorf("%s cannot be pinned as context", doc.Name)}
		}
		ctx.Dispatcher.Dispatch(state.PinDocument{DocumentID: doc.ID})
		toast(ctx, state.ToastInfo, "Pinned: "+doc.Name)
		return DoneMsg{}
	}
}

func handleRemoveDoc(ctx *Context, res ParseResult) tea.Cmd {
	if res.RawArgs == "" {
		return usageErr(ctx, "/rmdoc <name>")
	}
	name := res.RawArgs
	return func() tea.Msg {
		doc := findDocument(ctx.Dispatcher.State(), name)
		if doc == nil {
			return DoneMsg{Err: fmt.Errorf("no document matching %q", name)}
		}
		ctx.Dispatcher.Dispatch(state.DeleteDocument{DocumentID: doc.ID})
		toast(ctx, state.ToastInfo, "Deleted: "+doc.Name)
		return DoneMsg{}
	}
}

func handleDelete(ctx *Context, res ParseResult) tea.Cmd {
	return func() tea.Msg {
		session := ctx.Dispatcher.State().ActiveSession()
		if session == nil {
			return DoneMsg{Err: fmt.Errorf("no active session to delete")}
		}
		ctx.Dispatcher.Dispatch(state.DeleteSession{SessionID: session.ID})
		toast(ctx, state.ToastInfo, "Session deleted")
		return DoneMsg{}
	}
}

func handleClear(ctx *Context, res ParseResult) tea.Cmd {
	return func() tea.Msg {
		ctx.Dispatcher.Dispatch(state.ClearAllSessions{})
		toast(ctx, state.ToastInfo, "All study data cleared")
		return DoneMsg{}
	}
}

func handleSettings(ctx *Context, res ParseResult) tea.Cmd {
	if len(res.Args) != 2 {
		return usageErr(ctx, "/settings <voice|autoread|demo> <on|off>")
	}
	name, value := res.Args[0], res.Args[1]
	if value != "on" && value != "off" {
		return usageErr(ctx, "/settings <voice|autoread|demo> <on|off>")
	}
	enabled := value == "on"

	return func() tea.Msg {
		settings := ctx.Dispatcher.State().Settings
		switch name {
		case "voice":
			settings.VoiceEnabled = enabled
		case "autoread":
			settings.AutoRead = enabled
		case "demo":
			settings.DemoMode = enabled
		default:
			return DoneMsg{Err: fmt.Errorf("unknown setting %q (want voice, autoread, or demo)", name)}
		}
		ctx.Dispatcher.Dispatch(state.UpdateSettings{Settings: settings})
		toast(ctx, state.ToastSuccess, fmt.Sprintf("%s %s", name, value))
		return DoneMsg{}
	}
}

func handleExport(ctx *Context, res ParseResult) tea.Cmd {
	format := "md"
	if len(res.Args) > 0 {
		format = res.Args[0]
	}
	return func() tea.Msg {
		session := ctx.Dispatcher.State().ActiveSession()
		if session == nil {
			return DoneMsg{Err: fmt.Errorf("no active session to export")}
		}

		opts := export.DefaultOptions()
		opts.OutputDir = ctx.ExportDir
		opts.Theme = ctx.Theme

		var exporter export.Exporter
		switch format {
		case "md", "markdown":
			exporter = export.NewMarkdownExporter(opts)
		case "html":
			exporter = export.NewHTMLExporter(opts)
		case "json":
			exporter = export.NewJSONExporter(opts)
		default:
			return DoneMsg{Err: fmt.Errorf("unknown format %q (want json, md, or html)", format)}
		}

		path, err := export.ExportToFile(session, exporter, opts)
		if err != nil {
			return DoneMsg{Err: err}
		}
		toast(ctx, state.ToastSuccess, "Exported to "+path)
		return DoneMsg{}
	}
}

func handleTitle(ctx *Context, res ParseResult) tea.Cmd {
	title := res.RawArgs
	if title == "" {
		return usageErr(ctx, "/title <text>")
	}
	return func() tea.Msg {
		session := ctx.Dispatcher.State().ActiveSession()
		if session == nil {
			return DoneMsg{Err: fmt.Errorf("no active session to rename")}
		}
		ctx.Dispatcher.Dispatch(state.UpdateSessionTitle{SessionID: session.ID, Title: title})
		return DoneMsg{}
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

// findDocument matches by ID first, then case-insensitive name prefix.
func findDocument(s *state.AppState, name string) *state.Document {
	if doc := s.DocumentByID(name); doc != nil {
		return doc
	}
	lower := strings.ToLower(name)
	for i := range s.Documents {
		if strings.HasPrefix(strings.ToLower(s.Documents[i].Name), lower) {
			return &s.Documents[i]
		}
	}
	return nil
}

func formatQuiz(topic string, questions []state.QuizQuestion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Quiz: %s\n\n", topic)
	for i, q := range questions {
		fmt.Fprintf(&sb, "**%d. %s**\n\n", i+1, q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(&sb, "- %c) %s\n", 'A'+j, opt)
		}
		if q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
			fmt.Fprintf(&sb, "\n<details><summary>Answer</summary>\n\n%c) %s\n\n%s\n\n</details>\n\n",
				'A'+q.CorrectIndex, q.Options[q.CorrectIndex], q.Explanation)
		}
	}
	return sb.String()
}

func formatAnalysis(language string, a *tools.CodeAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Code review (%s) — %d/10\n\n%s\n", language, a.Rating, a.Summary)
	if len(a.Bugs) > 0 {
		sb.WriteString("\n**Issues**\n\n")
		for _, b := range a.Bugs {
			sb.WriteString("- " + b + "\n")
		}
	}
	if len(a.Optimizations) > 0 {
		sb.WriteString("\n**Optimizations**\n\n")
		for _, o := range a.Optimizations {
			sb.WriteString("- " + o + "\n")
		}
	}
	if a.Complexity != "" {
		sb.WriteString("\nComplexity: " + a.Complexity + "\n")
	}
	return sb.String()
}
