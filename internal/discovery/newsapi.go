package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// NewsAPI searches newsapi.org's /v2/everything endpoint.
type NewsAPI struct {
	src    *source
	apiKey string
}

// NewNewsAPI returns a NewsAPI client. An empty key leaves it unavailable.
func NewNewsAPI(apiKey string, opts ...Option) *NewsAPI {
	return &NewsAPI{
		src:    newSource("newsapi", "https://newsapi.org", opts),
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (n *NewsAPI) Name() string    { return n.src.name }
func (n *NewsAPI) Available() bool { return n.apiKey != "" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		URL         string  `json:"url"`
		URLToImage  *string `json:"urlToImage"`
		PublishedAt string  `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsAPI) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if !n.Available() {
		return nil, newError(n.Name(), KindAuthFailure, ErrMissingCredential)
	}
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("language", n.src.language)
	params.Set("sortBy", "relevancy")
	header := http.Header{}
	header.Set("X-Api-Key", n.apiKey)

	var resp newsAPIResponse
	if err := n.src.getJSON(ctx, n.src.endpoint("/v2/everything", params), header, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, newError(n.Name(), KindBadResponse, errors.New("status "+resp.Status+": "+resp.Code+" "+resp.Message))
	}

	out := make([]Candidate, 0, min(limit, len(resp.Articles)))
	for _, a := range resp.Articles {
		if len(out) >= limit {
			break
		}
		// NewsAPI blanks out articles pulled by publishers.
		if a.URL == "" || a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		out = append(out, Candidate{
			Title:       strings.TrimSpace(a.Title),
			Description: strings.TrimSpace(deref(a.Description)),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: parseTime(a.PublishedAt),
			ImageURL:    deref(a.URLToImage),
			Provider:    n.Name(),
		})
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
