package discovery

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"truthlens/internal/query"
)

// DefaultFeeds are major publisher feeds scanned when no list is configured.
var DefaultFeeds = []string{
	"https://feeds.bbci.co.uk/news/world/rss.xml",
	"https://www.theguardian.com/world/rss",
	"https://rss.nytimes.com/services/xml/rss/nyt/World.xml",
	"https://feeds.npr.org/1001/rss.xml",
	"https://www.aljazeera.com/xml/rss/all.xml",
}

// RSSFeeds is a provider over fixed publisher feeds. Feeds are not queryable
// like search, so items are pulled and matched locally against the query.
type RSSFeeds struct {
	src   *source
	feeds []string
}

// NewRSSFeeds returns a provider over feeds, or DefaultFeeds when feeds is empty.
func NewRSSFeeds(feeds []string, opts ...Option) *RSSFeeds {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &RSSFeeds{
		src:   newSource("rssfeeds", "", opts),
		feeds: feeds,
	}
}

func (r *RSSFeeds) Name() string    { return r.src.name }
func (r *RSSFeeds) Available() bool { return len(r.feeds) > 0 }

func (r *RSSFeeds) Search(ctx context.Context, q string, limit int) ([]Candidate, error) {
	limit = clampLimit(limit)
	keywords := feedKeywords(q)
	if len(keywords) == 0 {
		return nil, nil
	}

	header := http.Header{}
	header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml")
	parser := gofeed.NewParser()

	var (
		out     []Candidate
		lastErr error
		ok      int
	)
	for _, feedURL := range r.feeds {
		if len(out) >= limit || ctx.Err() != nil {
			break
		}
		raw, err := r.src.fetch(ctx, feedURL, header)
		if err != nil {
			lastErr = err
			continue
		}
		feed, err := parser.Parse(bytes.NewReader(raw))
		if err != nil {
			lastErr = newError(r.Name(), KindBadResponse, err)
			continue
		}
		ok++

		publisher := strings.TrimSpace(feed.Title)
		if publisher == "" {
			if u, err := url.Parse(feedURL); err == nil {
				publisher = u.Host
			}
		}

		for _, it := range feed.Items {
			if len(out) >= limit {
				break
			}
			link := strings.TrimSpace(it.Link)
			if link == "" || !matchesAnyKeyword(it.Title+" "+it.Description, keywords) {
				continue
			}
			var pub time.Time
			switch {
			case it.PublishedParsed != nil:
				pub = it.PublishedParsed.UTC()
			case it.UpdatedParsed != nil:
				pub = it.UpdatedParsed.UTC()
			}
			c := Candidate{
				Title:       strings.TrimSpace(it.Title),
				Description: htmlText(it.Description),
				URL:         link,
				Source:      publisher,
				PublishedAt: pub,
				Provider:    r.Name(),
			}
			if it.Image != nil {
				c.ImageURL = it.Image.URL
			}
			out = append(out, c)
		}
	}

	if ok == 0 && lastErr != nil {
		return nil, lastErr
	}
	if ok == 0 && ctx.Err() != nil {
		return nil, transportError(r.Name(), ctx.Err())
	}
	return out, nil
}

func feedKeywords(q string) []string {
	var out []string
	for _, w := range query.Words(q) {
		if utf8.RuneCountInString(w) < 3 || query.IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// matchesAnyKeyword reports whether any keyword occurs as a whole word in text.
func matchesAnyKeyword(text string, keywords []string) bool {
	words := query.WordSet(text)
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			return true
		}
	}
	return false
}
