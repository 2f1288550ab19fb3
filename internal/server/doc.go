// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements the local API relay.
//
// The relay exposes one generation route so clients without an API key
// can talk to the Generative Language API through a machine that has
// one. The key never leaves the server.
//
// # Endpoints
//
//   - POST /api/genai - Forward a generation request upstream
//   - GET  /health    - Health check
//
// # Security Features
//
//   - Per-IP token bucket rate limiting
//   - Security headers on every response
//   - Panic recovery with opaque 500s
//   - Request logging with latency
//
// # Usage
//
//	srv := server.NewServer(8790, apiKey)
//	if err := srv.Start(); err != nil {
//		log.Fatal(err)
//	}
package server
