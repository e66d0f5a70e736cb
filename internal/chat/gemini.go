// Package chat wraps the Gemini API for the bot's single use case: send one
// book-cover image plus a pitch prompt, get back a JSON-shaped text reply.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/Yuito3784/recbook/internal/assets"
	"github.com/Yuito3784/recbook/internal/metrics"
)

// NewGeminiClient creates a Gemini API client authenticated with the given key.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return client, nil
}

// GenerateBookPitch sends a book-cover image and prompt to Gemini and returns
// the raw text response. The pitchman persona rides along as the system
// instruction. One blocking call, no retry; the caller's context bounds it.
func GenerateBookPitch(ctx context.Context, client *genai.Client, modelName, prompt, mimeType string, image []byte) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.PitchmanSystemPrompt}},
		},
	}

	parts := []*genai.Part{
		{
			InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     image,
			},
		},
		{Text: prompt},
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	log.Debug().
		Str("model", modelName).
		Int("prompt_length", len(prompt)).
		Int("image_bytes", len(image)).
		Msg("Starting Gemini API call for book-cover analysis")

	callStart := time.Now()
	resp, err := client.Models.GenerateContent(ctx, modelName, contents, config)
	elapsed := time.Since(callStart)

	m := metrics.New().
		Dimension("Operation", "analyze").
		Metric("GeminiApiLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("GeminiApiCalls")
	if err != nil {
		m.Count("GeminiApiErrors")
	}
	if resp != nil && resp.UsageMetadata != nil {
		m.Metric("GeminiInputTokens", float64(resp.UsageMetadata.PromptTokenCount), metrics.UnitCount)
		m.Metric("GeminiOutputTokens", float64(resp.UsageMetadata.CandidatesTokenCount), metrics.UnitCount)
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Failed to generate book pitch from Gemini")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || resp.Text() == "" {
		log.Warn().Dur("duration", elapsed).Msg("Received empty response from Gemini")
		return "", fmt.Errorf("received empty response from Gemini API")
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", elapsed).
		Msg("Gemini API response received for book-cover analysis")

	return responseText, nil
}

// VisionGenerator binds a client and model name into the plain generate
// function the analyzer consumes, so handlers and tests can swap the model
// call without touching the analysis pipeline.
func VisionGenerator(client *genai.Client, modelName string) func(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	return func(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
		return GenerateBookPitch(ctx, client, modelName, prompt, mimeType, image)
	}
}
