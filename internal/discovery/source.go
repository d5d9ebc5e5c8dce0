package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	userAgent      = "Mozilla/5.0 (compatible; truthlens/1.0; +news corroboration)"
	maxBodyBytes   = 4 << 20
	errorBodyBytes = 4096
)

// Option configures an HTTP-backed provider.
type Option func(*source)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *source) {
		if c != nil {
			s.client = c
		}
	}
}

// WithBaseURL points the provider at a different endpoint root.
func WithBaseURL(u string) Option {
	return func(s *source) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			s.baseURL = u
		}
	}
}

// WithRateLimit sets the provider's request quota.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *source) {
		s.limiter = newLimiter(rps, burst)
	}
}

// WithLanguage sets the language hint sent to the provider.
func WithLanguage(lang string) Option {
	return func(s *source) {
		if lang = strings.TrimSpace(lang); lang != "" {
			s.language = lang
		}
	}
}

// source is the HTTP plumbing shared by every provider: quota, request,
// status mapping and decoding into a fixed schema.
type source struct {
	name     string
	baseURL  string
	language string
	client   *http.Client
	limiter  *rate.Limiter
}

func newSource(name, baseURL string, opts []Option) *source {
	s := &source{
		name:     name,
		baseURL:  baseURL,
		language: "en",
		client:   &http.Client{Timeout: 20 * time.Second},
		limiter:  newLimiter(2, 2),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// wait blocks until the quota allows a call. A quota that cannot be met
// before the call's deadline is reported as rate limiting.
func (s *source) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return transportError(s.name, ctx.Err())
		}
		return newError(s.name, KindRateLimited, err)
	}
	return nil
}

func (s *source) endpoint(path string, params url.Values) string {
	u := s.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// fetch performs a GET and returns the body of a 2xx response.
func (s *source) fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(s.name, KindBadResponse, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError(s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
		return nil, &ProviderError{
			Provider:   s.name,
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(s.name, err)
	}
	return raw, nil
}

// getJSON fetches rawURL and decodes the body into out.
func (s *source) getJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	raw, err := s.fetch(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(s.name, KindBadResponse, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// parseTime tries the layouts providers are known to use. The zero time
// means the provider gave no usable timestamp.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05.0000000Z",
		"2006-01-02 15:04:05",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 5
	case limit > 100:
		return 100
	default:
		return limit
	}
}
