package discovery

import (
	"net/http"
	"net/url"
	"strings"

	"truthlens/internal/config"
)

// FromConfig builds every known provider from cfg, including the ones that
// lack a credential; use Available to drop those before searching.
func FromConfig(cfg config.ProvidersConfig, client *http.Client) []Provider {
	common := []Option{
		WithHTTPClient(client),
		WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		WithLanguage(cfg.Language),
	}
	with := func(base string) []Option {
		return append(append([]Option{}, common...), WithBaseURL(base))
	}

	providers := []Provider{
		NewNewsAPI(cfg.NewsAPI.APIKey, with(cfg.NewsAPI.BaseURL)...),
		NewGNews(cfg.GNews.APIKey, with(cfg.GNews.BaseURL)...),
		NewNewsData(cfg.NewsData.APIKey, with(cfg.NewsData.BaseURL)...),
		NewGuardian(cfg.Guardian.APIKey, with(cfg.Guardian.BaseURL)...),
		NewBing(cfg.Bing.APIKey, with(cfg.Bing.BaseURL)...),
	}
	if cfg.GoogleNews.Enabled {
		providers = append(providers, NewGoogleNews(ProfileFor(cfg.Language), with(cfg.GoogleNews.BaseURL)...))
	}
	if cfg.Feeds.Enabled {
		providers = append(providers, NewRSSFeeds(cfg.Feeds.URLs, common...))
	}
	return providers
}

// Available returns the providers that can issue requests, in order.
func Available(providers []Provider) []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil && p.Available() {
			out = append(out, p)
		}
	}
	return out
}

// Status is a provider's configuration state.
type Status struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Statuses reports the state of each provider.
func Statuses(providers []Provider) []Status {
	out := make([]Status, 0, len(providers))
	for _, p := range providers {
		out = append(out, Status{Name: p.Name(), Available: p.Available()})
	}
	return out
}

// Names returns the provider names in order.
func Names(providers []Provider) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Name())
	}
	return out
}

// NormalizeURL drops the scheme, fragment, a leading "www." and tracking
// parameters so the same article linked two ways compares equal. Other query
// parameters are kept, sorted, since they can identify the article.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	out := host + strings.TrimRight(u.EscapedPath(), "/")

	params := u.Query()
	for k := range params {
		if isTrackingParam(k) {
			params.Del(k)
		}
	}
	if len(params) > 0 {
		out += "?" + params.Encode()
	}
	return out
}

var trackingParams = map[string]struct{}{
	"oc": {}, "fbclid": {}, "gclid": {}, "cmpid": {}, "mc_cid": {}, "mc_eid": {}, "ocid": {},
}

func isTrackingParam(name string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "utm_") || strings.HasPrefix(name, "at_") {
		return true
	}
	_, ok := trackingParams[name]
	return ok
}
