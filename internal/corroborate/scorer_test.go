package corroborate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/discovery"
)

func TestScore(t *testing.T) {
	t.Parallel()

	const q = "NASA Rover Lands Mars"

	tests := []struct {
		name string
		c    discovery.Candidate
		want float64
	}{
		{"title and description identical to query", cand(q, q, ""), 1},
		{"full title overlap only", cand("NASA rover lands on Mars", "", ""), TitleWeight},
		{"half title overlap", cand("Rover spotted near Mars", "", ""), TitleWeight / 2},
		{"description only", cand("Unrelated", "nasa mars", ""), DescriptionWeight / 2},
		{"no overlap", cand("Stock markets rally", "Shares up", ""), 0},
		{"case and punctuation ignored", cand("NASA: rover... LANDS (Mars)!", "", ""), TitleWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(tt.c, q)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestScore_EmptyQueryIsZero(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Score(cand("Anything", "at all", ""), ""))
	assert.Zero(t, Score(cand("Anything", "at all", ""), "  ?! "))
}

func TestScorer_DropsNoise(t *testing.T) {
	t.Parallel()

	// Ten query words: one title hit scores 0.07, two score 0.14.
	const q = "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	cands := []discovery.Candidate{
		cand("alpha only", "", "https://a/1"),
		cand("alpha bravo", "", "https://a/2"),
		cand("nothing here", "", "https://a/3"),
		cand("alpha bravo charlie", "", "https://a/4"),
	}

	got := Scorer{MinRelevance: 0.1}.Score(q, cands)
	require.Len(t, got, 2)
	assert.Equal(t, "https://a/2", got[0].URL)
	assert.Equal(t, "https://a/4", got[1].URL)
	assert.InDelta(t, 0.14, got[0].Relevance, 1e-9)
}

func TestScorer_CarriesCandidateFields(t *testing.T) {
	t.Parallel()

	c := cand("Mars rover", "lands", "https://nasa.gov/r")
	c.Provider = "newsapi"
	c.Query = "Rover Lands Mars"

	got := Scorer{MinRelevance: 0.1}.Score("Rover Lands Mars", []discovery.Candidate{c})
	require.Len(t, got, 1)
	assert.Equal(t, "newsapi", got[0].Provider)
	assert.Equal(t, "Rover Lands Mars", got[0].Query)
	assert.Equal(t, "stub", got[0].Source)
	assert.False(t, got[0].Placeholder)
}
