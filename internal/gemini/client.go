// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Gemini client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNoKey
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeRateLimited
	ErrTypeBlocked
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNoKey       = &ClientError{Type: ErrTypeNoKey, Message: "no API key configured"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRateLimited = &ClientError{Type: ErrTypeRateLimited, Message: "rate limited by the API"}
	ErrBlocked     = &ClientError{Type: ErrTypeBlocked, Message: "response blocked by safety settings"}
)

// IsRateLimited checks if an error is a rate-limit error.
func IsRateLimited(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeRateLimited
	}
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Gemini client.
type ClientConfig struct {
	// BaseURL is the API base URL. When ProxyMode is set it should point at
	// the local proxy instead of the Google endpoint.
	BaseURL string

	// APIKey authenticates direct requests. Unused in proxy mode, where the
	// proxy injects its own key.
	APIKey string

	// ProxyMode routes requests through the local /api/genai proxy so the
	// key never reaches this process.
	ProxyMode bool

	// Timeout for non-streaming requests (default: 60s)
	Timeout time.Duration
}

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: 60 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Generative Language API, either
// directly with an API key or through the local proxy.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a Gemini client with the given configuration.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// endpoint builds the URL for a direct model operation, appending the key
// as a query parameter.
func (c *Client) endpoint(model, op string) string {
	url := c.config.BaseURL + "/models/" + model + ":" + op
	if !c.config.ProxyMode && c.config.APIKey != "" {
		url += "?key=" + c.config.APIKey
	}
	return url
}

// =============================================================================
// PROXY ENVELOPE
// =============================================================================

// proxyConfig is the config block of the proxy envelope. The proxy
// flattens it back into the upstream generation request.
type proxyConfig struct {
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []SafetySetting   `json:"safetySettings,omitempty"`
}

// proxyRequest is the envelope POST /api/genai expects.
type proxyRequest struct {
	Model    string       `json:"model"`
	Contents []Content    `json:"contents"`
	Config   *proxyConfig `json:"config,omitempty"`
}

// marshalRequest produces the request body and URL for a generateContent
// call. Proxy mode wraps the request in the {model, contents, config}
// envelope and targets the proxy's single route; the key stays on the
// proxy side.
func (c *Client) marshalRequest(model string, req *GenerateRequest) ([]byte, string, error) {
	if !c.config.ProxyMode {
		body, err := json.Marshal(req)
		return body, c.endpoint(model, "generateContent"), err
	}

	envelope := proxyRequest{Model: model, Contents: req.Contents}
	if req.SystemInstruction != nil || req.GenerationConfig != nil || len(req.SafetySettings) > 0 {
		envelope.Config = &proxyConfig{
			SystemInstruction: req.SystemInstruction,
			GenerationConfig:  req.GenerationConfig,
			SafetySettings:    req.SafetySettings,
		}
	}
	body, err := json.Marshal(envelope)
	return body, c.config.BaseURL + "/api/genai", err
}

func (c *Client) checkKey() error {
	if !c.config.ProxyMode && c.config.APIKey == "" {
		return ErrNoKey
	}
	return nil
}

// =============================================================================
// GENERATE
// =============================================================================

// Generate sends a non-streaming generateContent request and returns the
// parsed response.
func (c *Client) Generate(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error) {
	if err := c.checkKey(); err != nil {
		return nil, err
	}

	body, url, err := c.marshalRequest(model, req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if result.Error != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: result.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "generate request failed: " + resp.Status,
		}
	}
	if len(result.Candidates) == 0 {
		return nil, ErrBlocked
	}

	return &result, nil
}

// GenerateText is a convenience wrapper returning only the text of the
// first candidate.
func (c *Client) GenerateText(ctx context.Context, model string, req *GenerateRequest) (string, error) {
	resp, err := c.Generate(ctx, model, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// =============================================================================
// STREAMING
// =============================================================================

// StreamCallback is called for each chunk received during streaming.
type StreamCallback func(chunk StreamChunk)

// GenerateStream sends a streaming request and calls the callback for each
// chunk, in arrival order, on the calling goroutine. It returns when the
// stream completes, fails, or the context is cancelled.
//
// The proxy exposes only the one-shot route, so proxy mode degrades to a
// single generateContent call delivered as one chunk.
func (c *Client) GenerateStream(ctx context.Context, model string, req *GenerateRequest, callback StreamCallback) error {
	if err := c.checkKey(); err != nil {
		return err
	}

	if c.config.ProxyMode {
		resp, err := c.Generate(ctx, model, req)
		if err != nil {
			return err
		}
		callback(StreamChunk{Content: resp.Text()})
		callback(StreamChunk{Done: true, Usage: resp.UsageMetadata})
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	url := c.endpoint(model, "streamGenerateContent")
	if c.config.APIKey == "" {
		url += "?alt=sse"
	} else {
		url += "&alt=sse"
	}

	// No client timeout on streams; the context governs their lifetime.
	streamClient := &http.Client{}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ctx.Err()
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		var errResp GenerateResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: errResp.Error.Message}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "stream request failed: " + resp.Status,
		}
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}
