package analyzer

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Result is the parsed book analysis produced by the vision model.
// SearchKeyword is used verbatim in the purchase-link query; KeyPoints, when
// present, holds exactly three short selling points for the checklist block.
type Result struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Catchphrase   string   `json:"catchphrase"`
	Description   string   `json:"description"`
	SearchKeyword string   `json:"search_keyword"`
	KeyPoints     []string `json:"key_points,omitempty"`
}

// resultSchema enforces the shape the card renderer depends on: every
// required field present and non-empty, and exactly three key points when the
// model includes them. Validation happens before rendering so a malformed
// model reply fails as an analysis error instead of a template crash.
const resultSchema = `{
	"type": "object",
	"required": ["title", "author", "catchphrase", "description", "search_keyword"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"author": {"type": "string", "minLength": 1},
		"catchphrase": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1},
		"search_keyword": {"type": "string", "minLength": 1},
		"key_points": {
			"type": "array",
			"items": {"type": "string", "minLength": 1},
			"minItems": 3,
			"maxItems": 3
		}
	}
}`

var compiledResultSchema = jsonschema.MustCompileString("analysis-result.json", resultSchema)

// validateResult checks a JSON document string against the result schema.
func validateResult(jsonStr string) error {
	var doc any
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := compiledResultSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
