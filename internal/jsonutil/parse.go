// Package jsonutil provides utilities for extracting and parsing JSON objects
// from LLM responses that may be wrapped in markdown code fences or embedded
// in prose, despite the prompt asking for raw JSON.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences removes literal ```json and ``` markers from text and
// trims surrounding whitespace. The model is instructed to output raw JSON
// with no fencing, but some responses come fenced anyway. The operation is
// idempotent: applying it to already-clean text returns the text unchanged.
func StripMarkdownFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ExtractObject returns the JSON object embedded in text, delimited by the
// first { and the last }. Text without any { contains no object at all
// (e.g. the model answered in prose), which is reported as an error before
// any parse is attempted.
func ExtractObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", fmt.Errorf("no closing } found")
	}
	return text[start : end+1], nil
}

// ParseObject strips markdown fences from raw LLM response text, extracts the
// JSON object, and unmarshals it into the provided type T.
//
// This consolidates the common pattern of parsing JSON from Gemini responses
// that may be wrapped in markdown code fences or embedded in prose.
func ParseObject[T any](raw string) (T, error) {
	var zero T

	text := StripMarkdownFences(raw)
	jsonStr, err := ExtractObject(text)
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		// Include a truncated preview in the error for debugging
		preview := jsonStr
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
