// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"strings"

	"github.com/jeranaias/mentor-tui/internal/state"
)

// MaxPinnedDocChars caps how much pinned document text is injected into
// the system instruction.
const MaxPinnedDocChars = 100000

// =============================================================================
// CHAT REQUEST SHAPING
// =============================================================================

// ChatInput collects everything a chat turn depends on.
type ChatInput struct {
	// History is the prior transcript of the session, oldest first. Roles
	// other than user and model are dropped.
	History []state.Message

	// Message is the new user message text.
	Message string

	// ImageDataURL optionally attaches an image to this turn, as a base64
	// data URL.
	ImageDataURL string

	// PinnedDoc is the active document, if any.
	PinnedDoc *state.Document

	// AvailableDocs is the full document library, listed in the system
	// instruction as an inventory.
	AvailableDocs []state.Document
}

// BuildChatRequest shapes a chat turn into a generate request:
//
//   - an uploaded image becomes an inline-data part ahead of the text part
//   - the document library is appended to the system instruction as an
//     inventory, marking the pinned entry
//   - a pinned text-like document is injected into the system instruction,
//     truncated to MaxPinnedDocChars
//   - a pinned image is attached to the user parts with an explanatory
//     trailing text part, since system instructions carry text only
//   - history keeps only user and model turns
func BuildChatRequest(in ChatInput) *GenerateRequest {
	system := SystemPrompt
	userParts := []Part{{Text: in.Message}}

	if in.ImageDataURL != "" {
		if mime, data, ok := SplitDataURL(in.ImageDataURL); ok {
			userParts = append([]Part{{InlineData: &InlineData{MimeType: mime, Data: data}}}, userParts...)
		}
	}

	if len(in.AvailableDocs) > 0 {
		var b strings.Builder
		for _, d := range in.AvailableDocs {
			b.WriteString("- " + d.Name + " (" + string(d.Kind) + ")")
			if in.PinnedDoc != nil && d.ID == in.PinnedDoc.ID {
				b.WriteString(" [ACTIVE/PINNED]")
			}
			b.WriteString("\n")
		}
		system += "\n\nKNOWLEDGE BASE INVENTORY:\n" + strings.TrimRight(b.String(), "\n")
	}

	if doc := in.PinnedDoc; doc != nil {
		switch {
		case doc.Kind.TextLike():
			system += "\n\nACTIVE DOCUMENT CONTENT (" + doc.Name + "):\n" + truncateChars(doc.Content, MaxPinnedDocChars)

		case doc.Kind == state.DocImage && doc.Content != "":
			if mime, data, ok := SplitDataURL(doc.Content); ok {
				if doc.MimeType != "" {
					mime = doc.MimeType
				}
				userParts = append(userParts, Part{
					Text: "[Context: The user has pinned an image named " + doc.Name + ". Use it to answer.]",
				})
				userParts = append([]Part{{InlineData: &InlineData{MimeType: mime, Data: data}}}, userParts...)
			}
		}
	}

	contents := make([]Content, 0, len(in.History)+1)
	for _, m := range in.History {
		if m.Role != state.RoleUser && m.Role != state.RoleModel {
			continue
		}
		contents = append(contents, Content{
			Role:  string(m.Role),
			Parts: []Part{{Text: m.Content}},
		})
	}
	contents = append(contents, Content{Role: "user", Parts: userParts})

	return &GenerateRequest{
		Contents:          contents,
		SystemInstruction: &Content{Parts: []Part{{Text: system}}},
		GenerationConfig:  &GenerationConfig{Temperature: DefaultTemperature},
		SafetySettings:    DefaultSafetySettings(),
	}
}

// truncateChars limits s to max characters without splitting a rune.
func truncateChars(s string, max int) string {
	if len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// =============================================================================
// DATA URLS
// =============================================================================

// SplitDataURL splits a base64 data URL into its MIME type and payload.
// A missing or malformed header yields image/jpeg and ok=false for an
// empty payload.
func SplitDataURL(url string) (mime, data string, ok bool) {
	mime = "image/jpeg"

	comma := strings.IndexByte(url, ',')
	if comma < 0 {
		return mime, "", false
	}
	header, payload := url[:comma], url[comma+1:]
	if payload == "" {
		return mime, "", false
	}

	// header looks like "data:image/png;base64"
	if semi := strings.IndexByte(header, ';'); semi > 0 {
		header = header[:semi]
	}
	if colon := strings.IndexByte(header, ':'); colon >= 0 && colon+1 < len(header) {
		if m := header[colon+1:]; m != "" {
			mime = m
		}
	}
	return mime, payload, true
}

// =============================================================================
// SIMPLE REQUESTS
// =============================================================================

// TextRequest builds a single-turn request with an optional system
// instruction, used by the tool calls.
func TextRequest(prompt, system string, config *GenerationConfig) *GenerateRequest {
	if config == nil {
		config = &GenerationConfig{Temperature: DefaultTemperature}
	}
	req := &GenerateRequest{
		Contents:         []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: config,
		SafetySettings:   DefaultSafetySettings(),
	}
	if system != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}
	return req
}
