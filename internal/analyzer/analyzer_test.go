package analyzer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// testImage returns a small valid PNG.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 24))
	for x := 0; x < 16; x++ {
		for y := 0; y < 24; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// pinned returns a Selector that always picks the strategy at index i.
func pinned(i int) Selector {
	return func(strategies []Strategy) Strategy { return strategies[i] }
}

func canned(response string) GenerateFunc {
	return func(ctx context.Context, prompt, mimeType string, img []byte) (string, error) {
		return response, nil
	}
}

func failureKind(t *testing.T, err error) FailureKind {
	t.Helper()
	var ae *AnalysisError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AnalysisError, got %T: %v", err, err)
	}
	return ae.Kind
}

func TestAnalyze_FencedJSONResponse(t *testing.T) {
	raw := "```json\n{\"title\":\"T\",\"author\":\"A\",\"catchphrase\":\"C\",\"description\":\"D\",\"search_keyword\":\"T A\"}\n```"

	a := New(canned(raw), WithSelector(pinned(0)))
	result, err := a.Analyze(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "T" || result.Author != "A" || result.Catchphrase != "C" ||
		result.Description != "D" || result.SearchKeyword != "T A" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.KeyPoints != nil {
		t.Errorf("expected no key points, got %v", result.KeyPoints)
	}
}

func TestAnalyze_KeyPointsVariant(t *testing.T) {
	raw := `{"title":"T","author":"A","catchphrase":"C","description":"D","search_keyword":"T A",
		"key_points":["P1","P2","P3"]}`

	a := New(canned(raw), WithSelector(pinned(1)))
	result, err := a.Analyze(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.KeyPoints) != 3 || result.KeyPoints[2] != "P3" {
		t.Errorf("unexpected key points: %v", result.KeyPoints)
	}
}

func TestAnalyze_ProseResponseIsFormatFailure(t *testing.T) {
	a := New(canned("I cannot identify this book."), WithSelector(pinned(0)))

	result, err := a.Analyze(context.Background(), testImage(t))
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
	if kind := failureKind(t, err); kind != KindFormat {
		t.Errorf("expected KindFormat, got %s", kind)
	}
}

func TestAnalyze_MalformedJSONIsParseFailure(t *testing.T) {
	a := New(canned(`{"title":"T","author": unterminated`), WithSelector(pinned(0)))

	_, err := a.Analyze(context.Background(), testImage(t))
	if kind := failureKind(t, err); kind != KindParse {
		t.Errorf("expected KindParse, got %s", kind)
	}
}

func TestAnalyze_MissingFieldIsValidateFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing search_keyword", `{"title":"T","author":"A","catchphrase":"C","description":"D"}`},
		{"empty search_keyword", `{"title":"T","author":"A","catchphrase":"C","description":"D","search_keyword":""}`},
		{"two key points", `{"title":"T","author":"A","catchphrase":"C","description":"D","search_keyword":"K","key_points":["P1","P2"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(canned(tt.raw), WithSelector(pinned(0)))
			_, err := a.Analyze(context.Background(), testImage(t))
			if kind := failureKind(t, err); kind != KindValidate {
				t.Errorf("expected KindValidate, got %s", kind)
			}
		})
	}
}

func TestAnalyze_UndecodableImageIsDecodeFailure(t *testing.T) {
	var called bool
	gen := func(ctx context.Context, prompt, mimeType string, img []byte) (string, error) {
		called = true
		return "", nil
	}

	a := New(gen, WithSelector(pinned(0)))
	_, err := a.Analyze(context.Background(), []byte("definitely not an image"))
	if kind := failureKind(t, err); kind != KindDecode {
		t.Errorf("expected KindDecode, got %s", kind)
	}
	if called {
		t.Error("model must not be called when the image does not decode")
	}
}

func TestAnalyze_ModelErrorIsModelFailure(t *testing.T) {
	gen := func(ctx context.Context, prompt, mimeType string, img []byte) (string, error) {
		return "", errors.New("quota exhausted")
	}

	a := New(gen, WithSelector(pinned(0)))
	_, err := a.Analyze(context.Background(), testImage(t))
	if kind := failureKind(t, err); kind != KindModel {
		t.Errorf("expected KindModel, got %s", kind)
	}
}

func TestAnalyze_PromptCarriesPinnedStrategy(t *testing.T) {
	var gotPrompt string
	gen := func(ctx context.Context, prompt, mimeType string, img []byte) (string, error) {
		gotPrompt = prompt
		return `{"title":"T","author":"A","catchphrase":"C","description":"D","search_keyword":"K"}`, nil
	}

	for i, s := range DefaultStrategies {
		a := New(gen, WithSelector(pinned(i)))
		if _, err := a.Analyze(context.Background(), testImage(t)); err != nil {
			t.Fatalf("strategy %d: unexpected error: %v", i, err)
		}
		if !strings.Contains(gotPrompt, s.Instruction) {
			t.Errorf("strategy %d (%s): prompt does not contain instruction", i, s.Angle)
		}
		if !strings.Contains(gotPrompt, "search_keyword") {
			t.Errorf("strategy %d: prompt missing output format block", i)
		}
	}
}

func TestRandomSelector_CoversAllStrategies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := RandomSelector(DefaultStrategies)
		seen[s.Angle] = true
	}
	if len(seen) != len(DefaultStrategies) {
		t.Errorf("expected all %d strategies selected over 1000 draws, saw %d", len(DefaultStrategies), len(seen))
	}
}

func TestBuildPrompt_RequestsRawJSON(t *testing.T) {
	prompt := BuildPrompt(DefaultStrategies[0])
	for _, field := range []string{"title", "author", "catchphrase", "description", "search_keyword", "key_points"} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt missing field %q", field)
		}
	}
}
