package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"
)

// GoogleNews searches the keyless Google News RSS endpoint.
type GoogleNews struct {
	src     *source
	profile LanguageProfile
}

// NewGoogleNews returns a Google News RSS client for the given language profile.
func NewGoogleNews(profile LanguageProfile, opts ...Option) *GoogleNews {
	return &GoogleNews{
		src:     newSource("googlenews", "https://news.google.com", opts),
		profile: profile,
	}
}

func (g *GoogleNews) Name() string { return g.src.name }

// Available is always true: the feed needs no credential.
func (g *GoogleNews) Available() bool { return true }

func (g *GoogleNews) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("hl", g.profile.HL)
	params.Set("gl", g.profile.GL)
	params.Set("ceid", g.profile.CEID)
	header := http.Header{}
	header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")

	raw, err := g.src.fetch(ctx, g.src.endpoint("/rss/search", params), header)
	if err != nil {
		return nil, err
	}

	parser := &rss.Parser{}
	feed, err := parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, newError(g.Name(), KindBadResponse, fmt.Errorf("parse rss: %w", err))
	}

	out := make([]Candidate, 0, min(limit, len(feed.Items)))
	for _, it := range feed.Items {
		if len(out) >= limit {
			break
		}
		link := strings.TrimSpace(it.Link)
		if link == "" || strings.TrimSpace(it.Title) == "" {
			continue
		}

		publisher := ""
		if it.Source != nil {
			publisher = strings.TrimSpace(it.Source.Title)
		}

		articleURL := publisherURL(it)
		if articleURL == "" {
			// The wrapper redirects to the article, which is still useful to a reader.
			articleURL = link
		}

		var pub time.Time
		if it.PubDateParsed != nil {
			pub = it.PubDateParsed.UTC()
		} else {
			pub = parseTime(it.PubDate)
		}

		out = append(out, Candidate{
			Title:       trimPublisherSuffix(it.Title, publisher),
			Description: descriptionText(it.Description, publisher),
			URL:         articleURL,
			Source:      publisher,
			PublishedAt: pub,
			Provider:    g.Name(),
		})
	}
	return out, nil
}

// trimPublisherSuffix drops the " - Publisher" tail Google appends to titles.
func trimPublisherSuffix(title, publisher string) string {
	title = strings.TrimSpace(title)
	if publisher != "" {
		title = strings.TrimSuffix(title, " - "+publisher)
	}
	return strings.TrimSpace(title)
}

// descriptionText is the plain text of an item description, or "" when it
// only repeats the headline and publisher.
func descriptionText(desc, publisher string) string {
	text := htmlText(desc)
	if publisher != "" {
		text = strings.TrimSpace(strings.TrimSuffix(text, publisher))
	}
	return text
}

var reURLPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// publisherURL tries, in order, the description's links, the GUID, query
// parameters of the wrapper link and finally the <source> URL when it points
// at more than a homepage.
func publisherURL(it *rss.Item) string {
	for _, href := range htmlLinks(it.Description) {
		if isPublisherURL(href) {
			return href
		}
	}

	if it.GUID != nil {
		for _, u := range reURLPattern.FindAllString(it.GUID.Value, -1) {
			u = strings.TrimRight(u, `.,;:!?)'"`)
			if isPublisherURL(u) {
				return u
			}
		}
	}

	if parsed, err := url.Parse(strings.TrimSpace(it.Link)); err == nil {
		q := parsed.Query()
		for _, param := range []string{"url", "u", "link"} {
			if v := q.Get(param); isPublisherURL(v) {
				return v
			}
		}
	}

	if it.Source != nil && isPublisherURL(it.Source.URL) && hasArticlePath(it.Source.URL) {
		return strings.TrimSpace(it.Source.URL)
	}
	return ""
}

var googleHosts = []string{"google.com", "news.google.com", "google.ca", "google.co.uk", "google.fr"}

// isPublisherURL reports whether u is an http(s) URL outside Google.
func isPublisherURL(u string) bool {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, g := range googleHosts {
		if host == g || strings.HasSuffix(host, "."+g) {
			return false
		}
	}
	return true
}

func hasArticlePath(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return strings.Trim(parsed.Path, "/") != "" || parsed.RawQuery != ""
}
