// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools implements the structured study tools.
//
// Each tool prompts the model for a strict JSON payload, extracts the
// payload from the reply (models wrap JSON in prose and code fences),
// validates it, and dispatches the result into application state.
//
// # Tools
//
//   - GenerateFlashcards: Exactly 8 question/answer cards per topic
//   - GenerateQuiz: Multiple-choice questions with explanations
//   - GenerateStudyPlan: A 4-week day-by-day plan
//   - SummarizeText: Structured summary of pasted material
//   - SolveProblem: Step-by-step worked solution
//   - AnalyzeCode: Explanation, issues, and suggestions for a snippet
//   - PredictMastery: Plain-text mastery estimate from quiz stats
package tools
