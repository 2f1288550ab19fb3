// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs ingests study materials into the document library.
//
// Text-like files are stored as UTF-8 text; binary files (images, audio,
// PDFs) are stored as base64 data URLs so the whole library survives a
// JSON round trip through the state snapshot.
package docs

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/mentor-tui/internal/state"
)

// Size limits, enforced before any content is read into memory.
const (
	// MaxDocumentBytes caps library uploads.
	MaxDocumentBytes = 20 * 1024 * 1024

	// MaxChatImageBytes caps images attached directly to a chat message.
	MaxChatImageBytes = 5 * 1024 * 1024
)

// Ingestion errors.
var (
	ErrTooLarge      = errors.New("file too large. Max 20MB")
	ErrImageTooLarge = errors.New("image too large (Max 5MB)")
	ErrEmptyFile     = errors.New("file is empty")
)

// textExtensions are treated as plain text regardless of their MIME type.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".json": true,
	".js": true, ".ts": true, ".tsx": true,
}

// =============================================================================
// KIND DETECTION
// =============================================================================

// DetectKind classifies a file by MIME type, falling back to the filename
// extension. Unknown files are DocOther, which still flows into the model
// context as text.
func DetectKind(name, mimeType string) state.DocKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return state.DocImage
	case mimeType == "application/pdf":
		return state.DocPDF
	case strings.HasPrefix(mimeType, "audio/"):
		return state.DocAudio
	case mimeType == "text/plain" || IsTextFile(name):
		return state.DocText
	default:
		return state.DocOther
	}
}

// IsTextFile reports whether the filename extension is on the plain-text
// allowlist.
func IsTextFile(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// MimeTypeFor guesses a MIME type from the filename, defaulting to
// application/octet-stream.
func MimeTypeFor(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		// Strip parameters like "; charset=utf-8".
		if semi := strings.IndexByte(t, ';'); semi > 0 {
			t = t[:semi]
		}
		return strings.TrimSpace(t)
	}
	return "application/octet-stream"
}

// =============================================================================
// INGESTION
// =============================================================================

// FromBytes builds a document from in-memory file content. Text-like
// files keep their bytes as UTF-8; everything else becomes a data URL.
func FromBytes(name string, content []byte) (state.Document, error) {
	if len(content) == 0 {
		return state.Document{}, ErrEmptyFile
	}
	if len(content) > MaxDocumentBytes {
		return state.Document{}, ErrTooLarge
	}

	mimeType := MimeTypeFor(name)
	kind := DetectKind(name, mimeType)

	var body string
	if kind == state.DocText || kind == state.DocOther {
		body = string(content)
	} else {
		body = EncodeDataURL(mimeType, content)
	}

	return state.Document{
		ID:         uuid.NewString(),
		Name:       filepath.Base(name),
		Kind:       kind,
		Content:    body,
		MimeType:   mimeType,
		UploadedAt: time.Now(),
	}, nil
}

// FromFile reads and ingests a file from disk. The size check runs on the
// file metadata before the content is read.
func FromFile(path string) (state.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return state.Document{}, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if info.Size() > MaxDocumentBytes {
		return state.Document{}, ErrTooLarge
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return state.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), content)
}

// ChatImageFromFile loads an image for direct chat attachment and returns
// it as a data URL. Enforces the tighter chat-image cap.
func ChatImageFromFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("inspecting %s: %w", path, err)
	}
	if info.Size() > MaxChatImageBytes {
		return "", ErrImageTooLarge
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if len(content) == 0 {
		return "", ErrEmptyFile
	}

	mimeType := MimeTypeFor(path)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%s is not an image", filepath.Base(path))
	}
	return EncodeDataURL(mimeType, content), nil
}

// =============================================================================
// DATA URLS
// =============================================================================

// EncodeDataURL packs binary content into a base64 data URL.
func EncodeDataURL(mimeType string, content []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// DecodeDataURL unpacks a data URL into its MIME type and raw bytes.
func DecodeDataURL(url string) (mimeType string, content []byte, err error) {
	if !strings.HasPrefix(url, "data:") {
		return "", nil, errors.New("not a data URL")
	}
	comma := strings.IndexByte(url, ',')
	if comma < 0 {
		return "", nil, errors.New("malformed data URL")
	}

	header := url[len("data:"):comma]
	if semi := strings.IndexByte(header, ';'); semi >= 0 {
		header = header[:semi]
	}
	mimeType = header

	content, err = base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URL: %w", err)
	}
	return mimeType, content, nil
}
