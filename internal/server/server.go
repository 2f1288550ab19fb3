// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the local key-holding proxy for the Generative
// Language API.
//
// Endpoints:
//   - POST /api/genai - Forward a generation request upstream
//   - GET  /health    - Health check
//
// The proxy holds the API key so clients in demo-less mode never see it.
// It forwards the request envelope verbatim and relays the upstream
// response, including upstream error messages.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the proxy server.
	DefaultPort = 8790

	// MaxRequestBodySize caps request bodies. Generation requests carry
	// inline images, so the cap sits above the 20MB document limit plus
	// base64 overhead.
	MaxRequestBodySize = 32 * 1024 * 1024

	// UpstreamTimeout bounds one forwarded request.
	UpstreamTimeout = 120 * time.Second

	// Version is the server version.
	Version = "0.1.0"
)

// DefaultUpstream is the public Generative Language API endpoint.
const DefaultUpstream = "https://generativelanguage.googleapis.com/v1beta"

// ============================================================================
// SERVER
// ============================================================================

// Server is the proxy HTTP server.
type Server struct {
	port     int
	apiKey   string
	upstream string
	router   *http.ServeMux
	server   *http.Server
	client   *http.Client
}

// NewServer creates a proxy server holding the given API key. If port is
// 0, DefaultPort is used.
func NewServer(port int, apiKey string) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		port:     port,
		apiKey:   apiKey,
		upstream: DefaultUpstream,
		router:   http.NewServeMux(),
		client:   &http.Client{Timeout: UpstreamTimeout},
	}

	s.setupRoutes()
	return s
}

// WithUpstream overrides the upstream base URL.
func (s *Server) WithUpstream(url string) *Server {
	s.upstream = url
	return s
}

// Port returns the server port.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the fully assembled handler, including middleware.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		RateLimitMiddleware(DefaultRateLimiter()),
	)(s.router)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/genai", s.handleGenAI)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// ============================================================================
// GENAI PROXY HANDLER
// ============================================================================

// GenAIRequest is the proxy request envelope.
type GenAIRequest struct {
	Model    string          `json:"model"`
	Contents json.RawMessage `json:"contents"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// upstreamEnvelope is what the proxy actually sends upstream: the config
// block is flattened into the generation request.
type upstreamEnvelope struct {
	Contents          json.RawMessage `json:"contents"`
	SystemInstruction json.RawMessage `json:"systemInstruction,omitempty"`
	GenerationConfig  json.RawMessage `json:"generationConfig,omitempty"`
	SafetySettings    json.RawMessage `json:"safetySettings,omitempty"`
}

// handleGenAI handles POST /api/genai.
func (s *Server) handleGenAI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	if s.apiKey == "" {
		s.writeError(w, http.StatusInternalServerError, "API key not configured on server")
		return
	}

	var req GenAIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return
		}
		log.Printf("PROXY | invalid request body | err=%v", err)
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if len(req.Contents) == 0 || string(req.Contents) == "null" {
		s.writeError(w, http.StatusBadRequest, "Request must contain contents")
		return
	}

	model := req.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	body, status, err := s.forward(r.Context(), model, &req)
	if err != nil {
		log.Printf("PROXY | upstream request failed | model=%s err=%v", model, err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// forward sends the request upstream and returns the raw response. Error
// statuses with a parseable upstream message become errors carrying that
// message.
func (s *Server) forward(ctx context.Context, model string, req *GenAIRequest) ([]byte, int, error) {
	envelope := upstreamEnvelope{Contents: req.Contents}
	if len(req.Config) > 0 {
		// The client-side config block mirrors the upstream field names.
		var cfg struct {
			SystemInstruction json.RawMessage `json:"systemInstruction,omitempty"`
			GenerationConfig  json.RawMessage `json:"generationConfig,omitempty"`
			SafetySettings    json.RawMessage `json:"safetySettings,omitempty"`
		}
		if err := json.Unmarshal(req.Config, &cfg); err == nil {
			envelope.SystemInstruction = cfg.SystemInstruction
			envelope.GenerationConfig = cfg.GenerationConfig
			envelope.SafetySettings = cfg.SafetySettings
		}
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, 0, fmt.Errorf("encoding upstream request: %w", err)
	}

	url := s.upstream + "/models/" + model + ":generateContent?key=" + s.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("building upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("upstream unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading upstream response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Surface the upstream error message when there is one.
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return nil, 0, fmt.Errorf("upstream error: %s", errResp.Error.Message)
		}
		return nil, 0, fmt.Errorf("upstream error: %s", resp.Status)
	}

	return body, resp.StatusCode, nil
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	KeyConfigured bool   `json:"key_configured"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		KeyConfigured: s.apiKey != "",
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: UpstreamTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", addr, Version)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | starting graceful shutdown")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response in the upstream error shape so
// clients parse both the same way.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}
