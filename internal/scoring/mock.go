package scoring

import (
	"context"
	"errors"
)

// MockProvider scores resumes from a fixed per-job-field table. It keeps the
// pipeline operable without the remote model and is fully deterministic.
type MockProvider struct{}

// NewMockProvider constructs a MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

type fieldProfile struct {
	score           int
	sections        SectionScores
	keywordsMatched []string
	keywordsMissing []string
	suggestions     []string
	strengths       []string
}

// genericProfile is the baseline merged into every field-specific profile,
// and used alone when no recognized job field is given.
var genericProfile = fieldProfile{
	score:           72,
	sections:        SectionScores{Format: 75, Content: 70, Keywords: 65, Impact: 68},
	keywordsMatched: []string{"communication", "teamwork", "problem solving"},
	keywordsMissing: []string{"leadership", "project management"},
	suggestions: []string{
		"Use standard section headings so ATS parsers find your experience",
		"Quantify achievements with numbers where possible",
		"Keep formatting simple: no tables, text boxes, or images",
	},
	strengths: []string{
		"Clear chronological structure",
		"Concise bullet points",
	},
}

var fieldProfiles = map[string]fieldProfile{
	"Software Development": {
		score:           78,
		sections:        SectionScores{Format: 80, Content: 75, Keywords: 72, Impact: 70},
		keywordsMatched: []string{"Git", "REST APIs", "agile", "unit testing"},
		keywordsMissing: []string{"CI/CD", "cloud infrastructure", "system design"},
		suggestions: []string{
			"List the languages and frameworks you ship with, not just ones you have touched",
			"Link to a portfolio or open-source contributions",
		},
		strengths: []string{"Technical skill section is easy to scan"},
	},
	"Data Science": {
		score:           76,
		sections:        SectionScores{Format: 78, Content: 74, Keywords: 70, Impact: 72},
		keywordsMatched: []string{"Python", "SQL", "statistics"},
		keywordsMissing: []string{"machine learning pipelines", "A/B testing", "data visualization"},
		suggestions: []string{
			"Name the models and datasets behind each project",
			"State the business impact of your analyses",
		},
		strengths: []string{"Projects show end-to-end ownership"},
	},
	"Product Management": {
		score:           74,
		sections:        SectionScores{Format: 76, Content: 73, Keywords: 68, Impact: 74},
		keywordsMatched: []string{"roadmap", "stakeholder management", "user research"},
		keywordsMissing: []string{"OKRs", "go-to-market", "metrics-driven prioritization"},
		suggestions: []string{
			"Tie each launch to a measurable outcome",
			"Show how you balanced competing stakeholder needs",
		},
		strengths: []string{"Outcome-oriented framing of launches"},
	},
	"Marketing": {
		score:           73,
		sections:        SectionScores{Format: 75, Content: 72, Keywords: 66, Impact: 71},
		keywordsMatched: []string{"campaigns", "content strategy", "SEO"},
		keywordsMissing: []string{"conversion rate optimization", "marketing automation", "attribution"},
		suggestions: []string{
			"Report campaign results as percentages and revenue, not activities",
		},
		strengths: []string{"Breadth across channels"},
	},
	"Sales": {
		score:           75,
		sections:        SectionScores{Format: 74, Content: 73, Keywords: 69, Impact: 76},
		keywordsMatched: []string{"pipeline management", "negotiation", "CRM"},
		keywordsMissing: []string{"quota attainment", "enterprise accounts", "forecasting"},
		suggestions: []string{
			"Lead with quota attainment percentages for each role",
		},
		strengths: []string{"Consistent year-over-year growth story"},
	},
	"Finance": {
		score:           74,
		sections:        SectionScores{Format: 79, Content: 72, Keywords: 67, Impact: 69},
		keywordsMatched: []string{"financial modeling", "budgeting", "Excel"},
		keywordsMissing: []string{"forecasting", "variance analysis", "GAAP"},
		suggestions: []string{
			"Quantify the size of budgets and portfolios you managed",
		},
		strengths: []string{"Certifications listed prominently"},
	},
	"Human Resources": {
		score:           73,
		sections:        SectionScores{Format: 77, Content: 71, Keywords: 66, Impact: 68},
		keywordsMatched: []string{"recruiting", "onboarding", "employee relations"},
		keywordsMissing: []string{"HRIS", "compensation benchmarking", "retention programs"},
		suggestions: []string{
			"Include hiring volume and time-to-fill improvements",
		},
		strengths: []string{"People-first framing with concrete programs"},
	},
	"Design": {
		score:           75,
		sections:        SectionScores{Format: 82, Content: 71, Keywords: 65, Impact: 70},
		keywordsMatched: []string{"Figma", "prototyping", "user testing"},
		keywordsMissing: []string{"design systems", "accessibility", "interaction design"},
		suggestions: []string{
			"Link your portfolio near the top of the resume",
		},
		strengths: []string{"Visual hierarchy of the document itself"},
	},
	"Customer Support": {
		score:           72,
		sections:        SectionScores{Format: 74, Content: 70, Keywords: 66, Impact: 67},
		keywordsMatched: []string{"ticketing systems", "customer satisfaction", "de-escalation"},
		keywordsMissing: []string{"CSAT targets", "knowledge base authoring", "SLA management"},
		suggestions: []string{
			"Share CSAT or NPS numbers alongside response times",
		},
		strengths: []string{"Empathy backed by process knowledge"},
	},
	"Other": {
		score:           72,
		sections:        SectionScores{Format: 75, Content: 70, Keywords: 65, Impact: 68},
		keywordsMatched: []string{"adaptability", "cross-functional collaboration"},
		keywordsMissing: []string{"industry-specific terminology"},
		suggestions: []string{
			"Mirror the vocabulary of the job postings you target",
		},
		strengths: []string{"Transferable skills are called out explicitly"},
	},
}

// Analyze returns the merged generic and field-specific profile for the
// given job field. Unrecognized fields fall back to the generic baseline.
func (p *MockProvider) Analyze(ctx context.Context, text, jobField string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(text) == 0 {
		return Result{}, errors.New("empty resume text")
	}

	profile, ok := fieldProfiles[CanonicalJobField(jobField)]
	if !ok {
		profile = genericProfile
		return profileResult(profile), nil
	}
	return profileResult(merge(genericProfile, profile)), nil
}

func profileResult(p fieldProfile) Result {
	return Result{
		Score:           p.score,
		SectionScores:   p.sections,
		KeywordsMatched: append([]string{}, p.keywordsMatched...),
		KeywordsMissing: append([]string{}, p.keywordsMissing...),
		Suggestions:     append([]string{}, p.suggestions...),
		Strengths:       append([]string{}, p.strengths...),
	}
}

// merge overlays a field profile on the generic baseline: the field's score
// and section scores win, list contents are concatenated field-first with
// duplicates removed.
func merge(base, field fieldProfile) fieldProfile {
	return fieldProfile{
		score:           field.score,
		sections:        field.sections,
		keywordsMatched: dedupe(field.keywordsMatched, base.keywordsMatched),
		keywordsMissing: dedupe(field.keywordsMissing, base.keywordsMissing),
		suggestions:     dedupe(field.suggestions, base.suggestions),
		strengths:       dedupe(field.strengths, base.strengths),
	}
}

func dedupe(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, item := range list {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

var _ Provider = (*MockProvider)(nil)
