package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// NewsData searches newsdata.io's latest-news endpoint.
type NewsData struct {
	src    *source
	apiKey string
}

// NewNewsData returns a NewsData client. An empty key leaves it unavailable.
func NewNewsData(apiKey string, opts ...Option) *NewsData {
	return &NewsData{
		src:    newSource("newsdata", "https://newsdata.io", opts),
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (n *NewsData) Name() string    { return n.src.name }
func (n *NewsData) Available() bool { return n.apiKey != "" }

type newsDataResponse struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
}

type newsDataArticle struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Link        string  `json:"link"`
	ImageURL    *string `json:"image_url"`
	PubDate     string  `json:"pubDate"`
	SourceID    string  `json:"source_id"`
	SourceName  string  `json:"source_name"`
}

// newsDataError is the shape of "results" when status is "error".
type newsDataError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// maxNewsDataSize is the largest page the free tier accepts.
const maxNewsDataSize = 10

func (n *NewsData) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if !n.Available() {
		return nil, newError(n.Name(), KindAuthFailure, ErrMissingCredential)
	}
	limit = min(clampLimit(limit), maxNewsDataSize)

	params := url.Values{}
	params.Set("q", query)
	params.Set("size", strconv.Itoa(limit))
	params.Set("language", n.src.language)
	params.Set("apikey", n.apiKey)

	var resp newsDataResponse
	if err := n.src.getJSON(ctx, n.src.endpoint("/api/1/latest", params), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		var e newsDataError
		_ = json.Unmarshal(resp.Results, &e)
		return nil, newError(n.Name(), KindBadResponse, errors.New("status "+resp.Status+": "+e.Code+" "+e.Message))
	}

	var articles []newsDataArticle
	if err := json.Unmarshal(resp.Results, &articles); err != nil {
		return nil, newError(n.Name(), KindBadResponse, err)
	}

	out := make([]Candidate, 0, min(limit, len(articles)))
	for _, a := range articles {
		if len(out) >= limit {
			break
		}
		if a.Link == "" || a.Title == "" {
			continue
		}
		src := a.SourceName
		if src == "" {
			src = a.SourceID
		}
		out = append(out, Candidate{
			Title:       strings.TrimSpace(a.Title),
			Description: strings.TrimSpace(deref(a.Description)),
			URL:         a.Link,
			Source:      src,
			PublishedAt: parseTime(a.PubDate),
			ImageURL:    deref(a.ImageURL),
			Provider:    n.Name(),
		})
	}
	return out, nil
}
