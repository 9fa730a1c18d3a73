package analyses

import (
	"time"

	"resume-ats/internal/scoring"
)

// Analysis is the immutable scoring record for a resume.
type Analysis struct {
	ID              string
	ResumeID        string
	Score           int
	KeywordsMatched []string
	KeywordsMissing []string
	SectionScores   scoring.SectionScores
	Suggestions     []string
	Strengths       []string
	Provider        string
	DurationMs      int64
	CreatedAt       time.Time
}
