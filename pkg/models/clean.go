package models

import "strings"

// FilterRecommendations drops incomplete endorsement entries. Both author and
// text are required for an entry to be persisted.
func FilterRecommendations(in []Recommendation) []Recommendation {
	out := make([]Recommendation, 0, len(in))
	for _, r := range in {
		r.Author = strings.TrimSpace(r.Author)
		r.Text = strings.TrimSpace(r.Text)
		if r.Author == "" || r.Text == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SplitList splits comma-separated user input into a clean list, discarding
// empty tokens.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ClampProgress bounds a goal progress value to the 0-100 range.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
