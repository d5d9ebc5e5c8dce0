package corroborate

import (
	"truthlens/internal/discovery"
	"truthlens/internal/query"
)

// Weights of the title and description overlap in a relevance score.
const (
	TitleWeight       = 0.7
	DescriptionWeight = 0.3
)

// Score is the lexical relevance of c to q in [0,1]: the share of query
// words found in the title, blended with the share found in the description.
func Score(c discovery.Candidate, q string) float64 {
	return scoreWords(c, query.WordSet(q))
}

func scoreWords(c discovery.Candidate, qw map[string]struct{}) float64 {
	if len(qw) == 0 {
		return 0
	}
	score := TitleWeight*overlap(qw, query.WordSet(c.Title)) +
		DescriptionWeight*overlap(qw, query.WordSet(c.Description))
	return min(max(score, 0), 1)
}

// overlap is |q ∩ other| / |q|.
func overlap(q, other map[string]struct{}) float64 {
	if len(q) == 0 || len(other) == 0 {
		return 0
	}
	hits := 0
	for w := range q {
		if _, ok := other[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(q))
}

// Scorer annotates candidates with their relevance and drops noise.
type Scorer struct {
	// MinRelevance is the score a candidate must exceed to be kept.
	MinRelevance float64
}

// Score returns the candidates scoring above MinRelevance, in input order.
func (s Scorer) Score(q string, cands []discovery.Candidate) []Reference {
	qw := query.WordSet(q)
	out := make([]Reference, 0, len(cands))
	for _, c := range cands {
		rel := scoreWords(c, qw)
		if rel <= s.MinRelevance {
			continue
		}
		out = append(out, newReference(c, rel))
	}
	return out
}
