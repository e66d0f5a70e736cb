// Package analyzer turns a photo of a book cover into a structured pitch.
//
// The pipeline per request: normalize the image, pick one persuasion
// strategy, build the prompt, make one blocking Gemini call, de-fence and
// parse the JSON reply, and validate it against the result schema. Every
// failure collapses to one user-visible outcome; the failure kind survives
// in the returned AnalysisError for logs and metrics.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Yuito3784/recbook/internal/assets"
	"github.com/Yuito3784/recbook/internal/imaging"
	"github.com/Yuito3784/recbook/internal/jsonutil"
)

// GenerateFunc submits a prompt and image to the vision model and returns the
// raw text response. Production wiring uses chat.VisionGenerator; tests
// substitute a canned function.
type GenerateFunc func(ctx context.Context, prompt, mimeType string, image []byte) (string, error)

// Analyzer runs the book-cover analysis pipeline.
type Analyzer struct {
	generate   GenerateFunc
	selector   Selector
	strategies []Strategy
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSelector replaces the default uniform-random strategy selector.
func WithSelector(s Selector) Option {
	return func(a *Analyzer) { a.selector = s }
}

// WithStrategies replaces the default strategy list.
func WithStrategies(strategies []Strategy) Option {
	return func(a *Analyzer) { a.strategies = strategies }
}

// New creates an Analyzer backed by the given generate function.
func New(generate GenerateFunc, opts ...Option) *Analyzer {
	a := &Analyzer{
		generate:   generate,
		selector:   RandomSelector,
		strategies: DefaultStrategies,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildPrompt assembles the per-request prompt: the strategy's instruction
// followed by the fixed JSON-output-format specification.
func BuildPrompt(s Strategy) string {
	var sb strings.Builder
	sb.WriteString(s.Instruction)
	sb.WriteString("\n\n")
	sb.WriteString(assets.OutputFormatPrompt)
	return sb.String()
}

// Analyze runs the full pipeline on raw inbound image bytes.
// On failure it returns a nil Result and an *AnalysisError carrying the
// failure kind; the caller replies with the fixed failure text either way.
func (a *Analyzer) Analyze(ctx context.Context, image []byte) (*Result, error) {
	normalized, mimeType, err := imaging.Normalize(image)
	if err != nil {
		return nil, logFail(KindDecode, err)
	}

	strategy := a.selector(a.strategies)
	prompt := BuildPrompt(strategy)
	log.Debug().Str("angle", strategy.Angle).Msg("Strategy selected")

	raw, err := a.generate(ctx, prompt, mimeType, normalized)
	if err != nil {
		return nil, logFail(KindModel, err)
	}

	result, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("angle", strategy.Angle).
		Str("title", result.Title).
		Str("author", result.Author).
		Int("key_points", len(result.KeyPoints)).
		Msg("Book cover analyzed")

	return result, nil
}

// parseResponse cleans the raw model output and parses it into a validated
// Result. A reply with no { is rejected before any JSON parse is attempted.
func parseResponse(raw string) (*Result, error) {
	cleaned := jsonutil.StripMarkdownFences(raw)

	jsonStr, err := jsonutil.ExtractObject(cleaned)
	if err != nil {
		return nil, logFail(KindFormat, fmt.Errorf("%w (raw length: %d)", err, len(raw)))
	}

	if err := validateResult(jsonStr); err != nil {
		// Distinguish malformed JSON from well-formed JSON missing fields.
		if strings.HasPrefix(err.Error(), "parse json") {
			return nil, logFail(KindParse, err)
		}
		return nil, logFail(KindValidate, err)
	}

	var result Result
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, logFail(KindParse, err)
	}
	return &result, nil
}

// logFail logs the underlying error once and wraps it with its kind.
func logFail(kind FailureKind, err error) error {
	log.Error().Err(err).Str("kind", kind.String()).Msg("Analysis failed")
	return &AnalysisError{Kind: kind, Err: err}
}
