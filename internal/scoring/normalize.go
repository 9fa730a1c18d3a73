package scoring

import "math"

// SectionShare is one slice of the section-score breakdown chart.
type SectionShare struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// NormalizeSectionScores converts the four section scores into integer
// percentages of their total, in fixed order (Format, Content, Keywords,
// Impact). Rounding drift is folded into the largest share so the output
// always sums to exactly 100. A zero total yields an even split.
func NormalizeSectionScores(s SectionScores) []SectionShare {
	values := [4]int{s.Format, s.Content, s.Keywords, s.Impact}
	labels := [4]string{"Format", "Content", "Keywords", "Impact"}

	total := 0
	for _, v := range values {
		total += v
	}

	out := make([]SectionShare, 4)
	if total == 0 {
		for i := range out {
			out[i] = SectionShare{Label: labels[i], Value: 25}
		}
		return out
	}

	sum := 0
	for i, v := range values {
		pct := int(math.Round(float64(v) / float64(total) * 100))
		out[i] = SectionShare{Label: labels[i], Value: pct}
		sum += pct
	}

	if sum != 100 {
		// Fold the drift into the largest share; first occurrence wins ties.
		largest := 0
		for i := 1; i < len(out); i++ {
			if out[i].Value > out[largest].Value {
				largest = i
			}
		}
		out[largest].Value += 100 - sum
	}

	return out
}
