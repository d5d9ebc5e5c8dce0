// Package corroborate gathers news references that corroborate a passage of
// text: it fans a query out over providers, scores what comes back against
// the query, drops near-duplicates and returns a bounded ranked list.
package corroborate

import (
	"net/url"
	"time"

	"truthlens/internal/discovery"
)

// Placeholder values used when nothing qualifies.
const (
	PlaceholderTitle  = "No relevant references found"
	PlaceholderSource = "Google News Search"
	fallbackSearchURL = "https://news.google.com"
)

// Reference is a scored candidate as handed back to callers.
type Reference struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	ImageURL    string    `json:"image_url,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	Query       string    `json:"query,omitempty"`
	// Relevance is in [0,1].
	Relevance float64 `json:"relevance"`
	// Placeholder marks the synthetic entry returned when nothing was found.
	Placeholder bool `json:"placeholder,omitempty"`
}

func newReference(c discovery.Candidate, relevance float64) Reference {
	return Reference{
		Title:       c.Title,
		Description: c.Description,
		URL:         c.URL,
		Source:      c.Source,
		PublishedAt: c.PublishedAt,
		ImageURL:    c.ImageURL,
		Provider:    c.Provider,
		Query:       c.Query,
		Relevance:   relevance,
	}
}

// Placeholder returns the single entry substituted for an empty result.
func Placeholder(q string) Reference {
	ref := Reference{
		Title:       PlaceholderTitle,
		Description: "No news articles matched the search query.",
		URL:         fallbackSearchURL,
		Source:      PlaceholderSource,
	}
	if q != "" {
		ref.Description = "No news articles matched the search query: " + q
		ref.URL = fallbackSearchURL + "/search?q=" + url.QueryEscape(q)
	}
	ref.Placeholder = true
	return ref
}

// Result is the outcome of one corroboration. References is never empty.
type Result struct {
	Query      string      `json:"query"`
	Variants   []string    `json:"variants,omitempty"`
	References []Reference `json:"references"`
}

// Found reports whether any real reference was found.
func (r Result) Found() bool {
	for _, ref := range r.References {
		if !ref.Placeholder {
			return true
		}
	}
	return false
}
