package scoring

import "context"

// SectionScores holds the four per-section sub-scores of an analysis.
// Values are 0-100 and are not required to sum to 100.
type SectionScores struct {
	Format   int `json:"format"`
	Content  int `json:"content"`
	Keywords int `json:"keywords"`
	Impact   int `json:"impact"`
}

// Result is the outcome of scoring a resume against ATS heuristics.
type Result struct {
	Score           int           `json:"score"`
	KeywordsMatched []string      `json:"keywordsMatched"`
	KeywordsMissing []string      `json:"keywordsMissing"`
	SectionScores   SectionScores `json:"sectionScores"`
	Suggestions     []string      `json:"suggestions"`
	Strengths       []string      `json:"strengths"`
}

// Provider scores resume text, optionally tailored to a job field.
type Provider interface {
	Analyze(ctx context.Context, text, jobField string) (Result, error)
}
