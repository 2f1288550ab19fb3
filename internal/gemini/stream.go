// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// =============================================================================
// STREAM READER
// =============================================================================

// streamDataPrefix marks SSE data lines in the streaming response.
var streamDataPrefix = []byte("data: ")

// StreamReader parses server-sent events from a streaming response body.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	chunkCount  int
	usage       *UsageMetadata
}

// NewStreamReader creates a stream reader over an SSE response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream ends or the context is cancelled. Cancellation
// between chunks is detected before the next read.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					callback(StreamChunk{Done: true, Usage: s.usage})
					return nil
				}
				return err
			}
			if chunk != nil {
				callback(*chunk)
			}
		}
	}
}

// readChunk reads and parses a single SSE event.
func (s *StreamReader) readChunk() (*StreamChunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(bytes.TrimSpace(line)) == 0 {
			return nil, io.EOF
		}
		if len(line) == 0 {
			return nil, err
		}
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	if !bytes.HasPrefix(line, streamDataPrefix) {
		// Comments and event-type lines are ignored.
		return nil, nil
	}
	data := bytes.TrimPrefix(line, streamDataPrefix)

	var response GenerateResponse
	if err := json.Unmarshal(data, &response); err != nil {
		// Skip malformed events.
		return nil, nil
	}

	if response.Error != nil {
		return &StreamChunk{
			Error: &ClientError{Type: ErrTypeInvalidResponse, Message: response.Error.Message},
			Done:  true,
		}, nil
	}

	if response.UsageMetadata != nil {
		s.usage = response.UsageMetadata
	}

	content := response.Text()
	if content != "" {
		s.accumulator.WriteString(content)
		s.chunkCount++
	}

	return &StreamChunk{Content: content}, nil
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// ChunkCount returns the number of non-empty chunks received.
func (s *StreamReader) ChunkCount() int {
	return s.chunkCount
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator collects streaming chunks into a cumulative transcript
// and tracks completion.
type StreamAccumulator struct {
	content   strings.Builder
	startTime time.Time
	firstByte time.Time
	done      bool
	err       error
	usage     *UsageMetadata
}

// NewStreamAccumulator creates a new accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{startTime: time.Now()}
}

// Add processes a chunk. After Add returns, Content reflects everything
// received so far, so callers can publish cumulative snapshots.
func (a *StreamAccumulator) Add(chunk StreamChunk) {
	if chunk.Error != nil {
		a.err = chunk.Error
		a.done = true
		return
	}
	if chunk.Content != "" && a.content.Len() == 0 {
		a.firstByte = time.Now()
	}
	a.content.WriteString(chunk.Content)
	if chunk.Done {
		a.done = true
		a.usage = chunk.Usage
	}
}

// Content returns the accumulated content.
func (a *StreamAccumulator) Content() string {
	return a.content.String()
}

// IsDone reports whether the stream has completed.
func (a *StreamAccumulator) IsDone() bool {
	return a.done
}

// Err returns the stream error, if any.
func (a *StreamAccumulator) Err() error {
	return a.err
}

// Usage returns the final token accounting, if the API reported one.
func (a *StreamAccumulator) Usage() *UsageMetadata {
	return a.usage
}

// TimeToFirstByte returns the latency before the first content arrived,
// or zero if nothing arrived.
func (a *StreamAccumulator) TimeToFirstByte() time.Duration {
	if a.firstByte.IsZero() {
		return 0
	}
	return a.firstByte.Sub(a.startTime)
}
