package corroborate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/query"
)

func ref(title, url string, rel float64) Reference {
	return Reference{Title: title, URL: url, Source: "stub", Relevance: rel}
}

func TestFinalize_EmptyYieldsPlaceholder(t *testing.T) {
	t.Parallel()

	got := Ranker{DuplicateThreshold: 0.8}.Finalize("Mars rover", nil, 5)
	require.Len(t, got, 1)

	p := got[0]
	assert.True(t, p.Placeholder)
	assert.Equal(t, PlaceholderTitle, p.Title)
	assert.Equal(t, PlaceholderSource, p.Source)
	assert.Zero(t, p.Relevance)
	assert.Contains(t, p.Description, "Mars rover")
	assert.Equal(t, "https://news.google.com/search?q=Mars+rover", p.URL)
}

func TestPlaceholder_EmptyQuery(t *testing.T) {
	t.Parallel()

	p := Placeholder("")
	assert.Equal(t, "https://news.google.com", p.URL)
	assert.Equal(t, PlaceholderTitle, p.Title)
}

func TestFinalize_SortsStableByRelevance(t *testing.T) {
	t.Parallel()

	in := []Reference{
		ref("first low", "https://a/1", 0.3),
		ref("second high", "https://a/2", 0.9),
		ref("third tie", "https://a/3", 0.3),
		ref("fourth mid", "https://a/4", 0.5),
	}
	got := Ranker{DuplicateThreshold: 0.8}.Finalize("q", in, 10)

	var urls []string
	for _, r := range got {
		urls = append(urls, r.URL)
	}
	assert.Equal(t, []string{"https://a/2", "https://a/4", "https://a/1", "https://a/3"}, urls)
	assert.Equal(t, "https://a/1", in[0].URL, "input must not be reordered")
}

func TestFinalize_Truncates(t *testing.T) {
	t.Parallel()

	var in []Reference
	for i := range 10 {
		in = append(in, ref(fmt.Sprintf("distinct story number %d", i), fmt.Sprintf("https://a/%d", i), 0.5))
	}
	// Titles share 3 of 4 words, below the duplicate bar.
	got := Ranker{DuplicateThreshold: 0.8}.Finalize("q", in, 3)
	assert.Len(t, got, 3)
}

func TestFinalize_NearDuplicatesKeepHighestScored(t *testing.T) {
	t.Parallel()

	in := []Reference{
		ref("NASA rover lands on Mars after long journey", "https://b/1", 0.7),
		ref("NASA rover lands on Mars", "https://a/1", 1.0),
		ref("Budget talks stall in parliament", "https://c/1", 0.4),
	}
	got := Ranker{DuplicateThreshold: 0.8}.Finalize("q", in, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "https://a/1", got[0].URL)
	assert.Equal(t, "https://c/1", got[1].URL)
}

func TestFinalize_SameURLTwice(t *testing.T) {
	t.Parallel()

	in := []Reference{
		ref("Storm batters the coast", "https://www.bbc.co.uk/news/1?at_medium=rss", 0.8),
		ref("Coastal towns flooded overnight", "https://bbc.co.uk/news/1", 0.6),
	}
	got := Ranker{DuplicateThreshold: 0.8}.Finalize("q", in, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "Storm batters the coast", got[0].Title)
}

func TestFinalize_QueryIdentifiesArticle(t *testing.T) {
	t.Parallel()

	in := []Reference{
		ref("Senate passes climate bill", "https://news.example/story.php?id=101", 0.9),
		ref("Wildfire spreads across county", "https://news.example/story.php?id=202", 0.7),
		ref("Lawmakers approve emissions package", "https://news.example/story.php?id=101&utm_source=rss", 0.5),
	}
	got := Ranker{DuplicateThreshold: 0.9}.Finalize("q", in, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "https://news.example/story.php?id=101", got[0].URL)
	assert.Equal(t, "https://news.example/story.php?id=202", got[1].URL)
}

func TestFinalize_EmptyTitlesAreNotDuplicates(t *testing.T) {
	t.Parallel()

	in := []Reference{ref("", "https://a/1", 0.5), ref("", "https://a/2", 0.4)}
	got := Ranker{DuplicateThreshold: 0.8}.Finalize("q", in, 5)
	assert.Len(t, got, 2)
}

func TestFinalize_Properties(t *testing.T) {
	t.Parallel()

	titles := []string{
		"Central bank raises interest rates",
		"Central bank raises rates again",
		"Wildfire spreads across the valley",
		"Wildfire spreads across valley overnight",
		"Election results delayed",
		"Football final ends in draw",
		"Bank raises interest rates",
		"Heatwave breaks records",
	}
	var in []Reference
	for i, title := range titles {
		in = append(in, ref(title, fmt.Sprintf("https://x/%d", i), float64((i*37)%10+1)/10))
	}

	r := Ranker{DuplicateThreshold: 0.8}
	for limit := 1; limit <= len(titles)+1; limit++ {
		got := r.Finalize("q", in, limit)
		require.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), limit)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Relevance, got[i].Relevance)
		}
		for i := range got {
			for j := i + 1; j < len(got); j++ {
				sim := TitleSimilarity(query.WordSet(got[i].Title), query.WordSet(got[j].Title))
				assert.Less(t, sim, 0.8, "%q vs %q", got[i].Title, got[j].Title)
			}
		}
	}
}

func TestTitleSimilarity(t *testing.T) {
	t.Parallel()

	a := query.WordSet("NASA rover lands on Mars")
	b := query.WordSet("NASA rover lands on Mars after long journey")
	c := query.WordSet("Stock markets rally")

	assert.InDelta(t, 1.0, TitleSimilarity(a, b), 1e-9)
	assert.InDelta(t, 1.0, TitleSimilarity(b, a), 1e-9)
	assert.Zero(t, TitleSimilarity(a, c))
	assert.Zero(t, TitleSimilarity(a, nil))
}
