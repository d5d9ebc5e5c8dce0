package corroborate

import (
	"sort"

	"truthlens/internal/discovery"
	"truthlens/internal/query"
)

// Ranker orders scored references and removes syndicated copies.
type Ranker struct {
	// DuplicateThreshold is the title overlap at which two references are
	// the same story.
	DuplicateThreshold float64
}

// Finalize sorts refs by relevance (stable, so ties keep discovery order),
// admits a reference only if its title is not a near-duplicate of one
// already admitted and its URL is new, then truncates to limit. The result
// is never empty: when nothing survives it holds the placeholder for q.
func (r Ranker) Finalize(q string, refs []Reference, limit int) []Reference {
	if limit <= 0 {
		limit = 1
	}
	sorted := make([]Reference, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Relevance > sorted[j].Relevance
	})

	var (
		out    []Reference
		titles []map[string]struct{}
		urls   = make(map[string]struct{})
	)
	for _, ref := range sorted {
		if len(out) >= limit {
			break
		}
		tw := query.WordSet(ref.Title)
		if r.duplicateOf(tw, titles) {
			continue
		}
		if u := discovery.NormalizeURL(ref.URL); u != "" {
			if _, seen := urls[u]; seen {
				continue
			}
			urls[u] = struct{}{}
		}
		out = append(out, ref)
		titles = append(titles, tw)
	}

	if len(out) == 0 {
		return []Reference{Placeholder(q)}
	}
	return out
}

func (r Ranker) duplicateOf(title map[string]struct{}, admitted []map[string]struct{}) bool {
	for _, other := range admitted {
		if TitleSimilarity(title, other) >= r.DuplicateThreshold {
			return true
		}
	}
	return false
}

// TitleSimilarity is |a ∩ b| / min(|a|, |b|). Empty sets are never similar.
func TitleSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	common := 0
	for w := range small {
		if _, ok := large[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(small))
}
