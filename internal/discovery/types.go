// Package discovery wraps external news-search backends behind one Provider
// interface and maps their responses into Candidates.
package discovery

import (
	"context"
	"time"
)

// Candidate is a single news item as returned by a provider, before any
// relevance filtering. URL identifies it within one provider only.
type Candidate struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	Provider    string    `json:"provider"`
	// Query is the query variant that found the candidate.
	Query string `json:"query"`
}

// Provider is a news-search backend.
type Provider interface {
	// Name identifies the provider in logs, metrics and results.
	Name() string
	// Available reports whether the provider is configured well enough to
	// issue requests. Unavailable providers are never called.
	Available() bool
	// Search returns at most limit candidates for query. Failures are
	// reported as *ProviderError.
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}
