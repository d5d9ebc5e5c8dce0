package discovery

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// GNews searches gnews.io.
type GNews struct {
	src    *source
	apiKey string
}

// NewGNews returns a GNews client. An empty key leaves it unavailable.
func NewGNews(apiKey string, opts ...Option) *GNews {
	return &GNews{
		src:    newSource("gnews", "https://gnews.io", opts),
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (g *GNews) Name() string    { return g.src.name }
func (g *GNews) Available() bool { return g.apiKey != "" }

type gnewsResponse struct {
	Errors   []string `json:"errors"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (g *GNews) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if !g.Available() {
		return nil, newError(g.Name(), KindAuthFailure, ErrMissingCredential)
	}
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("max", strconv.Itoa(limit))
	params.Set("lang", g.src.language)
	params.Set("sortby", "relevance")
	params.Set("apikey", g.apiKey)

	var resp gnewsResponse
	if err := g.src.getJSON(ctx, g.src.endpoint("/api/v4/search", params), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, newError(g.Name(), KindBadResponse, errors.New(strings.Join(resp.Errors, "; ")))
	}

	out := make([]Candidate, 0, min(limit, len(resp.Articles)))
	for _, a := range resp.Articles {
		if len(out) >= limit {
			break
		}
		if a.URL == "" || a.Title == "" {
			continue
		}
		out = append(out, Candidate{
			Title:       strings.TrimSpace(a.Title),
			Description: strings.TrimSpace(a.Description),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: parseTime(a.PublishedAt),
			ImageURL:    a.Image,
			Provider:    g.Name(),
		})
	}
	return out, nil
}
