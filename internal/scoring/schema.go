package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// resultSchema is the wire contract for provider output. Section keys are
// optional on purpose: a missing key is tolerated and substituted with zero
// during decoding rather than rejected.
const resultSchema = `{
  "type": "object",
  "required": ["score"],
  "properties": {
    "score": {"type": "number"},
    "keywordsMatched": {"type": "array", "items": {"type": "string"}},
    "keywordsMissing": {"type": "array", "items": {"type": "string"}},
    "sectionScores": {
      "type": "object",
      "properties": {
        "format": {"type": "number"},
        "content": {"type": "number"},
        "keywords": {"type": "number"},
        "impact": {"type": "number"}
      }
    },
    "suggestions": {"type": "array", "items": {"type": "string"}},
    "strengths": {"type": "array", "items": {"type": "string"}}
  }
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

// ValidateResultPayload checks a raw provider payload against the contract.
func ValidateResultPayload(raw json.RawMessage) error {
	res, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}
	if !res.Valid() {
		issues := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			issues = append(issues, e.String())
		}
		return fmt.Errorf("schema mismatch: %s", strings.Join(issues, "; "))
	}
	return nil
}

type rawSectionScores struct {
	Format   *float64 `json:"format"`
	Content  *float64 `json:"content"`
	Keywords *float64 `json:"keywords"`
	Impact   *float64 `json:"impact"`
}

type rawResult struct {
	Score           float64          `json:"score"`
	KeywordsMatched []string         `json:"keywordsMatched"`
	KeywordsMissing []string         `json:"keywordsMissing"`
	SectionScores   rawSectionScores `json:"sectionScores"`
	Suggestions     []string         `json:"suggestions"`
	Strengths       []string         `json:"strengths"`
}

// DecodeResult parses a raw provider payload into a Result. The payload is
// validated against the contract first; missing section keys become zero,
// scores are clamped to [0,100], and nil lists become empty slices so callers
// never see nil.
func DecodeResult(raw json.RawMessage) (Result, error) {
	if err := ValidateResultPayload(raw); err != nil {
		return Result{}, err
	}

	var parsed rawResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode result: %w", err)
	}

	return Result{
		Score: clampScore(parsed.Score),
		SectionScores: SectionScores{
			Format:   clampSection(parsed.SectionScores.Format),
			Content:  clampSection(parsed.SectionScores.Content),
			Keywords: clampSection(parsed.SectionScores.Keywords),
			Impact:   clampSection(parsed.SectionScores.Impact),
		},
		KeywordsMatched: orEmpty(parsed.KeywordsMatched),
		KeywordsMissing: orEmpty(parsed.KeywordsMissing),
		Suggestions:     orEmpty(parsed.Suggestions),
		Strengths:       orEmpty(parsed.Strengths),
	}, nil
}

func clampScore(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func clampSection(v *float64) int {
	if v == nil {
		return 0
	}
	return clampScore(*v)
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
