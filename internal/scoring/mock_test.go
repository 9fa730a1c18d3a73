package scoring

import (
	"context"
	"testing"
)

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider()
	a, err := p.Analyze(context.Background(), "resume text", "Data Science")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	b, err := p.Analyze(context.Background(), "resume text", "Data Science")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.Score != b.Score || len(a.KeywordsMatched) != len(b.KeywordsMatched) {
		t.Fatalf("mock provider must be deterministic: %+v vs %+v", a, b)
	}
}

func TestMockProviderKnownFieldMergesBaseline(t *testing.T) {
	p := NewMockProvider()
	res, err := p.Analyze(context.Background(), "resume text", "Software Development")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Score < 0 || res.Score > 100 {
		t.Fatalf("score out of range: %d", res.Score)
	}

	containsAll := func(list []string, want ...string) bool {
		set := make(map[string]struct{}, len(list))
		for _, v := range list {
			set[v] = struct{}{}
		}
		for _, w := range want {
			if _, ok := set[w]; !ok {
				return false
			}
		}
		return true
	}
	// Field-specific keywords and the generic baseline must both be present.
	if !containsAll(res.KeywordsMatched, "Git", "communication") {
		t.Errorf("keywordsMatched missing merged entries: %v", res.KeywordsMatched)
	}
	if !containsAll(res.KeywordsMissing, "CI/CD", "leadership") {
		t.Errorf("keywordsMissing missing merged entries: %v", res.KeywordsMissing)
	}
}

func TestMockProviderUnknownFieldFallsBackToGeneric(t *testing.T) {
	p := NewMockProvider()
	unknown, err := p.Analyze(context.Background(), "resume text", "Underwater Basket Weaving")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	empty, err := p.Analyze(context.Background(), "resume text", "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if unknown.Score != empty.Score {
		t.Fatalf("unknown field and empty field must both use the generic profile")
	}
	if unknown.SectionScores != genericProfile.sections {
		t.Fatalf("unknown field sections = %+v, want generic", unknown.SectionScores)
	}
}

func TestMockProviderEveryJobFieldHasProfile(t *testing.T) {
	p := NewMockProvider()
	for _, field := range JobFields {
		res, err := p.Analyze(context.Background(), "resume text", field)
		if err != nil {
			t.Fatalf("analyze %q: %v", field, err)
		}
		if res.Score < 0 || res.Score > 100 {
			t.Errorf("%q: score out of range: %d", field, res.Score)
		}
		total := res.SectionScores.Format + res.SectionScores.Content +
			res.SectionScores.Keywords + res.SectionScores.Impact
		if total == 0 {
			t.Errorf("%q: all section scores zero", field)
		}
	}
}

func TestMockProviderRejectsEmptyText(t *testing.T) {
	p := NewMockProvider()
	if _, err := p.Analyze(context.Background(), "", "Sales"); err == nil {
		t.Fatalf("expected error on empty text")
	}
}

func TestCanonicalJobField(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Software Development", "Software Development"},
		{"software development", "Software Development"},
		{"  Sales  ", "Sales"},
		{"Astrology", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CanonicalJobField(tc.in); got != tc.want {
			t.Errorf("CanonicalJobField(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
