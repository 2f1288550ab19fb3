// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini is a client for the Generative Language API (v1beta).
//
// The client supports one-shot generation, SSE streaming, and a proxy
// mode that sends keyless requests through a local relay. Request
// shaping (system prompt, pinned document injection, safety settings,
// history replay) is centralized in BuildChatRequest so every call path
// produces the same wire format.
//
// # Key Types
//
//   - Client: HTTP client with typed errors and timeout handling
//   - GenerateRequest / GenerateResponse: Wire types for v1beta
//   - StreamReader: Incremental SSE chunk reader with cancellation
//   - ChatInput: High-level input shaped into a GenerateRequest
//
// # Errors
//
// Failures map to sentinel errors callers can test with errors.Is:
// ErrNoKey, ErrTimeout, ErrRateLimited, ErrBlocked. ClientError carries
// the HTTP status and error type for everything else.
//
// # Usage
//
//	client := gemini.NewClient(gemini.DefaultConfig())
//	req := gemini.TextRequest("Explain entropy briefly.", "", nil)
//	text, err := client.GenerateText(ctx, gemini.ModelFast, req)
package gemini
