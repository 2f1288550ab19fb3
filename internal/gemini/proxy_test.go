// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// End-to-end tests for proxy mode: a keyless client talking to the local
// relay, which holds the key and forwards upstream.
package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jeranaias/mentor-tui/internal/server"
)

// proxyFixture wires a fake upstream, the real relay handler in front of
// it, and a keyless client pointed at the relay.
func proxyFixture(t *testing.T, upstreamHandler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	upstream := httptest.NewServer(upstreamHandler)
	t.Cleanup(upstream.Close)

	relay := httptest.NewServer(server.NewServer(0, "relay-key").WithUpstream(upstream.URL).Handler())
	t.Cleanup(relay.Close)

	client := NewClient(&ClientConfig{
		BaseURL:   relay.URL,
		ProxyMode: true,
	})
	return client, upstream
}

func TestGenerate_ProxyMode(t *testing.T) {
	var upstreamHits atomic.Int64
	var gotPath string
	var gotKey string
	var gotBody struct {
		Contents          []Content         `json:"contents"`
		SystemInstruction *Content          `json:"systemInstruction"`
		GenerationConfig  *GenerationConfig `json:"generationConfig"`
		SafetySettings    []SafetySetting   `json:"safetySettings"`
	}

	client, _ := proxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		upstreamHits.Add(1)
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding upstream body: %v", err)
		}
		json.NewEncoder(w).Encode(GenerateResponse{
			Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "relayed"}}}}},
		})
	})

	req := &GenerateRequest{
		Contents:          []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
		SystemInstruction: &Content{Parts: []Part{{Text: "be helpful"}}},
		GenerationConfig:  &GenerationConfig{Temperature: DefaultTemperature},
		SafetySettings:    DefaultSafetySettings(),
	}

	resp, err := client.Generate(context.Background(), ModelFast, req)
	if err != nil {
		t.Fatalf("Generate via proxy: %v", err)
	}
	if resp.Text() != "relayed" {
		t.Errorf("text = %q", resp.Text())
	}

	if got := upstreamHits.Load(); got != 1 {
		t.Fatalf("upstream hits = %d, want 1", got)
	}
	if !strings.Contains(gotPath, "/models/"+ModelFast+":generateContent") {
		t.Errorf("upstream path = %q", gotPath)
	}
	// The relay injects its own key; the client never carried one.
	if gotKey != "relay-key" {
		t.Errorf("upstream key = %q", gotKey)
	}
	// The envelope's config block is flattened back into the upstream
	// request.
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "be helpful" {
		t.Errorf("systemInstruction = %+v", gotBody.SystemInstruction)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.Temperature != DefaultTemperature {
		t.Errorf("generationConfig = %+v", gotBody.GenerationConfig)
	}
	if len(gotBody.SafetySettings) != len(DefaultSafetySettings()) {
		t.Errorf("safetySettings = %+v", gotBody.SafetySettings)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "hi" {
		t.Errorf("contents = %+v", gotBody.Contents)
	}
}

func TestGenerate_ProxyModeUpstreamError(t *testing.T) {
	client, _ := proxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid argument", "code": 400},
		})
	})

	_, err := client.Generate(context.Background(), ModelFast, TextRequest("x", "", nil))
	if err == nil || !strings.Contains(err.Error(), "invalid argument") {
		t.Errorf("err = %v, want upstream message relayed through the proxy", err)
	}
}

func TestGenerateStream_ProxyModeDegradesToOneShot(t *testing.T) {
	var upstreamHits atomic.Int64
	client, _ := proxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		upstreamHits.Add(1)
		if strings.Contains(r.URL.Path, "streamGenerateContent") {
			t.Errorf("proxy mode must not use the streaming operation, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(GenerateResponse{
			Candidates:    []Candidate{{Content: Content{Parts: []Part{{Text: "full answer"}}}}},
			UsageMetadata: &UsageMetadata{TotalTokenCount: 7},
		})
	})

	var chunks []StreamChunk
	err := client.GenerateStream(context.Background(), ModelChat, TextRequest("hi", "", nil), func(chunk StreamChunk) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("GenerateStream via proxy: %v", err)
	}

	if upstreamHits.Load() != 1 {
		t.Fatalf("upstream hits = %d, want 1", upstreamHits.Load())
	}
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want content + done", len(chunks))
	}
	if chunks[0].Content != "full answer" || chunks[0].Done {
		t.Errorf("first chunk = %+v", chunks[0])
	}
	if !chunks[1].Done || chunks[1].Usage == nil || chunks[1].Usage.TotalTokenCount != 7 {
		t.Errorf("final chunk = %+v", chunks[1])
	}
}

func TestGenerate_ProxyModeNeedsNoKey(t *testing.T) {
	client := NewClient(&ClientConfig{BaseURL: "http://127.0.0.1:1", ProxyMode: true})
	// The keyless guard applies to direct mode only; proxy mode proceeds
	// to the network and fails there.
	_, err := client.Generate(context.Background(), ModelFast, TextRequest("x", "", nil))
	if err == ErrNoKey {
		t.Error("proxy mode must not require a local key")
	}
}
