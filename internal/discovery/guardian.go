package discovery

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Guardian searches the Guardian content API.
type Guardian struct {
	src    *source
	apiKey string
}

// NewGuardian returns a Guardian client. An empty key leaves it unavailable.
func NewGuardian(apiKey string, opts ...Option) *Guardian {
	return &Guardian{
		src:    newSource("guardian", "https://content.guardianapis.com", opts),
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (g *Guardian) Name() string    { return g.src.name }
func (g *Guardian) Available() bool { return g.apiKey != "" }

type guardianResponse struct {
	Response struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Results []struct {
			WebTitle           string `json:"webTitle"`
			WebURL             string `json:"webUrl"`
			WebPublicationDate string `json:"webPublicationDate"`
			Fields             struct {
				TrailText string `json:"trailText"`
				Thumbnail string `json:"thumbnail"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

func (g *Guardian) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if !g.Available() {
		return nil, newError(g.Name(), KindAuthFailure, ErrMissingCredential)
	}
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("page-size", strconv.Itoa(limit))
	params.Set("order-by", "relevance")
	params.Set("show-fields", "trailText,thumbnail")
	params.Set("api-key", g.apiKey)

	var resp guardianResponse
	if err := g.src.getJSON(ctx, g.src.endpoint("/search", params), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Response.Status != "ok" {
		return nil, newError(g.Name(), KindBadResponse, errors.New("status "+resp.Response.Status+": "+resp.Response.Message))
	}

	out := make([]Candidate, 0, min(limit, len(resp.Response.Results)))
	for _, r := range resp.Response.Results {
		if len(out) >= limit {
			break
		}
		if r.WebURL == "" || r.WebTitle == "" {
			continue
		}
		out = append(out, Candidate{
			Title:       strings.TrimSpace(r.WebTitle),
			Description: htmlText(r.Fields.TrailText),
			URL:         r.WebURL,
			Source:      "The Guardian",
			PublishedAt: parseTime(r.WebPublicationDate),
			ImageURL:    r.Fields.Thumbnail,
			Provider:    g.Name(),
		})
	}
	return out, nil
}
