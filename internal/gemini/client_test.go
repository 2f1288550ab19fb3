// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func candidateJSON(text string) string {
	resp := GenerateResponse{
		Candidates: []Candidate{{Content: Content{Role: "model", Parts: []Part{{Text: text}}}}},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestClient(url string) *Client {
	return NewClient(&ClientConfig{BaseURL: url, APIKey: "test-key"})
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.Contains(r.URL.Path, "models/"+ModelFast+":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q, want test-key", r.URL.Query().Get("key"))
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Contents) == 0 {
			t.Error("contents missing")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(candidateJSON("photosynthesis converts light")))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got, err := c.GenerateText(context.Background(), ModelFast, TextRequest("explain", "", nil))
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "photosynthesis converts light" {
		t.Errorf("text = %q", got)
	}
}

func TestGenerate_NoKey(t *testing.T) {
	c := NewClient(&ClientConfig{BaseURL: "http://example.invalid"})
	_, err := c.Generate(context.Background(), ModelFast, TextRequest("x", "", nil))
	if err != ErrNoKey {
		t.Errorf("err = %v, want ErrNoKey", err)
	}
}

func TestGenerate_APIErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Generate(context.Background(), ModelFast, TextRequest("x", "", nil))
	if err == nil || !strings.Contains(err.Error(), "invalid argument") {
		t.Errorf("err = %v, want upstream message surfaced", err)
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Generate(context.Background(), ModelFast, TextRequest("x", "", nil))
	if !IsRateLimited(err) {
		t.Errorf("err = %v, want rate-limit error", err)
	}
}

func TestGenerate_EmptyCandidatesIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Generate(context.Background(), ModelFast, TextRequest("x", "", nil))
	if err != ErrBlocked {
		t.Errorf("err = %v, want ErrBlocked", err)
	}
}

func TestGenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":streamGenerateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("alt = %q, want sse", r.URL.Query().Get("alt"))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: " + candidateJSON("Hel") + "\n\n"))
		w.Write([]byte("data: " + candidateJSON("lo!") + "\n\n"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	acc := NewStreamAccumulator()
	err := c.GenerateStream(context.Background(), ModelChat, TextRequest("hi", "", nil), acc.Add)
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}
	if acc.Content() != "Hello!" {
		t.Errorf("content = %q, want %q", acc.Content(), "Hello!")
	}
	if !acc.IsDone() {
		t.Error("accumulator should be done after EOF")
	}
}

func TestGenerateStream_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: " + candidateJSON("partial") + "\n\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(srv.URL)

	acc := NewStreamAccumulator()
	err := c.GenerateStream(ctx, ModelChat, TextRequest("hi", "", nil), func(chunk StreamChunk) {
		acc.Add(chunk)
		if acc.Content() == "partial" {
			cancel()
		}
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	// Content received before cancellation is retained.
	if acc.Content() != "partial" {
		t.Errorf("content = %q, want %q", acc.Content(), "partial")
	}
}

func TestStreamReader_SkipsMalformedAndCommentLines(t *testing.T) {
	body := strings.NewReader(
		": keepalive comment\n" +
			"data: {broken json\n" +
			"data: " + candidateJSON("ok") + "\n")

	r := NewStreamReader(body)
	acc := NewStreamAccumulator()
	if err := r.Process(context.Background(), acc.Add); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if acc.Content() != "ok" {
		t.Errorf("content = %q, want %q", acc.Content(), "ok")
	}
}

func TestStreamReader_ErrorEvent(t *testing.T) {
	body := strings.NewReader(`data: {"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}` + "\n")

	r := NewStreamReader(body)
	acc := NewStreamAccumulator()
	if err := r.Process(context.Background(), acc.Add); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if acc.Err() == nil || !strings.Contains(acc.Err().Error(), "quota exhausted") {
		t.Errorf("accumulator error = %v", acc.Err())
	}
}
