package analyses

import (
	"time"

	"resume-ats/internal/scoring"
)

// SectionShareResponse is one labeled slice of the section chart.
type SectionShareResponse struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// AnalysisResponse is the outward-facing representation of an analysis.
// SectionShares carries the normalized percentages for chart rendering.
type AnalysisResponse struct {
	AnalysisID      string                 `json:"analysisId"`
	ResumeID        string                 `json:"resumeId"`
	Score           int                    `json:"score"`
	KeywordsMatched []string               `json:"keywordsMatched"`
	KeywordsMissing []string               `json:"keywordsMissing"`
	SectionScores   scoring.SectionScores  `json:"sectionScores"`
	SectionShares   []SectionShareResponse `json:"sectionShares"`
	Suggestions     []string               `json:"suggestions"`
	Strengths       []string               `json:"strengths"`
	Provider        string                 `json:"provider,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

func toResponse(analysis Analysis) AnalysisResponse {
	shares := scoring.NormalizeSectionScores(analysis.SectionScores)
	out := make([]SectionShareResponse, 0, len(shares))
	for _, share := range shares {
		out = append(out, SectionShareResponse{Label: share.Label, Value: share.Value})
	}
	return AnalysisResponse{
		AnalysisID:      analysis.ID,
		ResumeID:        analysis.ResumeID,
		Score:           analysis.Score,
		KeywordsMatched: orEmpty(analysis.KeywordsMatched),
		KeywordsMissing: orEmpty(analysis.KeywordsMissing),
		SectionScores:   analysis.SectionScores,
		SectionShares:   out,
		Suggestions:     orEmpty(analysis.Suggestions),
		Strengths:       orEmpty(analysis.Strengths),
		Provider:        analysis.Provider,
		CreatedAt:       analysis.CreatedAt,
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
