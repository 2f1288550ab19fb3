// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"encoding/json"
	"errors"
	"strings"
)

// Extraction errors.
var (
	ErrNoJSON      = errors.New("no JSON found in response")
	ErrInvalidJSON = errors.New("invalid JSON in response")
)

// ExtractJSON unmarshals model output into v, tolerating prose around the
// JSON payload. The whole string is tried first; on failure the substring
// between the earliest opening delimiter and its matching closing
// delimiter is tried. When both an object and an array open, the earlier
// one wins.
func ExtractJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	firstCurly := strings.IndexByte(text, '{')
	lastCurly := strings.LastIndexByte(text, '}')
	firstSquare := strings.IndexByte(text, '[')
	lastSquare := strings.LastIndexByte(text, ']')

	var candidate string
	if firstCurly != -1 && (firstSquare == -1 || firstCurly < firstSquare) {
		if lastCurly > firstCurly {
			candidate = text[firstCurly : lastCurly+1]
		}
	} else if firstSquare != -1 && lastSquare > firstSquare {
		candidate = text[firstSquare : lastSquare+1]
	}

	if candidate == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return ErrInvalidJSON
	}
	return nil
}
