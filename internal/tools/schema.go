// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import "encoding/json"

// Schema is an OpenAPI-style response schema node, as accepted by the
// generation API's responseSchema field.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
}

func (s *Schema) raw() json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func str() *Schema             { return &Schema{Type: "STRING"} }
func integer() *Schema         { return &Schema{Type: "INTEGER"} }
func arr(item *Schema) *Schema { return &Schema{Type: "ARRAY", Items: item} }
func obj(props map[string]*Schema) *Schema {
	return &Schema{Type: "OBJECT", Properties: props}
}

// flashcardsSchema constrains flashcard generation output.
func flashcardsSchema() *Schema {
	return obj(map[string]*Schema{
		"flashcards": arr(obj(map[string]*Schema{
			"front":      str(),
			"back":       str(),
			"category":   str(),
			"difficulty": {Type: "STRING", Enum: []string{"easy", "medium", "hard"}},
		})),
	})
}

// quizSchema constrains quiz generation output.
func quizSchema() *Schema {
	return obj(map[string]*Schema{
		"quiz": arr(obj(map[string]*Schema{
			"question":      str(),
			"options":       arr(str()),
			"correctAnswer": integer(),
			"explanation":   str(),
			"difficulty":    str(),
		})),
	})
}

// planSchema constrains study plan generation output.
func planSchema() *Schema {
	return obj(map[string]*Schema{
		"plan": obj(map[string]*Schema{
			"overview": str(),
			"weeks": arr(obj(map[string]*Schema{
				"weekNumber": integer(),
				"focus":      str(),
				"days": arr(obj(map[string]*Schema{
					"day":       integer(),
					"milestone": str(),
					"topics":    arr(str()),
					"activities": arr(obj(map[string]*Schema{
						"type":        str(),
						"duration":    integer(),
						"description": str(),
					})),
				})),
			})),
		}),
	})
}

// codeAnalysisSchema constrains code review output.
func codeAnalysisSchema() *Schema {
	return obj(map[string]*Schema{
		"summary":       str(),
		"bugs":          arr(str()),
		"optimizations": arr(str()),
		"complexity":    str(),
		"rating":        {Type: "INTEGER", Description: "Rating out of 10"},
	})
}
