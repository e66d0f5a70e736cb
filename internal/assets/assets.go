// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time, keeping prompt wording out of Go string literals so it can
// be tuned without touching code.
package assets

import (
	_ "embed"
)

// PitchmanSystemPrompt sets the model persona: a legendary live-demo
// salesperson who writes copy that makes the reader want the book now.
//
//go:embed prompts/pitchman-system.txt
var PitchmanSystemPrompt string

// OutputFormatPrompt is the fixed JSON output-format block appended to
// every analysis prompt. The model is told to output raw JSON with no
// markdown fencing; responses that fence anyway are stripped downstream.
//
//go:embed prompts/output-format.txt
var OutputFormatPrompt string
