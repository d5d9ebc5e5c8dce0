package discovery

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const bingRapidAPIHost = "bing-news-search1.p.rapidapi.com"

// Bing searches Bing News through RapidAPI.
type Bing struct {
	src    *source
	apiKey string
}

// NewBing returns a Bing News client. An empty key leaves it unavailable.
func NewBing(apiKey string, opts ...Option) *Bing {
	return &Bing{
		src:    newSource("bing", "https://"+bingRapidAPIHost, opts),
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (b *Bing) Name() string    { return b.src.name }
func (b *Bing) Available() bool { return b.apiKey != "" }

type bingResponse struct {
	Value []struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		URL           string `json:"url"`
		DatePublished string `json:"datePublished"`
		Provider      []struct {
			Name string `json:"name"`
		} `json:"provider"`
		Image *struct {
			Thumbnail struct {
				ContentURL string `json:"contentUrl"`
			} `json:"thumbnail"`
		} `json:"image"`
	} `json:"value"`
}

func (b *Bing) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if !b.Available() {
		return nil, newError(b.Name(), KindAuthFailure, ErrMissingCredential)
	}
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))
	params.Set("textFormat", "Raw")
	params.Set("safeSearch", "Off")
	params.Set("sortBy", "Relevance")
	params.Set("setLang", b.src.language)
	header := http.Header{}
	header.Set("X-BingApis-SDK", "true")
	header.Set("X-RapidAPI-Key", b.apiKey)
	header.Set("X-RapidAPI-Host", bingRapidAPIHost)

	var resp bingResponse
	if err := b.src.getJSON(ctx, b.src.endpoint("/news/search", params), header, &resp); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, min(limit, len(resp.Value)))
	for _, v := range resp.Value {
		if len(out) >= limit {
			break
		}
		if v.URL == "" || v.Name == "" {
			continue
		}
		c := Candidate{
			Title:       strings.TrimSpace(v.Name),
			Description: strings.TrimSpace(v.Description),
			URL:         v.URL,
			PublishedAt: parseTime(v.DatePublished),
			Provider:    b.Name(),
		}
		if len(v.Provider) > 0 {
			c.Source = v.Provider[0].Name
		}
		if v.Image != nil {
			c.ImageURL = v.Image.Thumbnail.ContentURL
		}
		out = append(out, c)
	}
	return out, nil
}
