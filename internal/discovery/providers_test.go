package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestNewsAPI_Search(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		jsonBody(`{"status":"ok","articles":[
			{"source":{"name":"The Verge"},"title":"Apple unveils iOS 18","description":"AI features","url":"https://theverge.com/a","urlToImage":"https://img/a.png","publishedAt":"2024-06-10T18:00:00Z"},
			{"source":{"name":"X"},"title":"[Removed]","description":null,"url":"https://removed.com","urlToImage":null,"publishedAt":""},
			{"source":{"name":"9to5Mac"},"title":"iOS 18 hands-on","description":null,"url":"https://9to5mac.com/b","urlToImage":null,"publishedAt":"2024-06-11T08:30:00Z"}
		]}`)(w, r)
	})

	p := NewNewsAPI("secret", WithBaseURL(srv.URL), WithRateLimit(0, 0))
	cands, err := p.Search(context.Background(), "Apple iOS 18", 5)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/v2/everything", got.URL.Path)
	assert.Equal(t, "secret", got.Header.Get("X-Api-Key"))
	assert.Equal(t, "Apple iOS 18", got.URL.Query().Get("q"))
	assert.Equal(t, "5", got.URL.Query().Get("pageSize"))
	assert.Equal(t, "relevancy", got.URL.Query().Get("sortBy"))
	assert.Equal(t, "en", got.URL.Query().Get("language"))

	require.Len(t, cands, 2)
	assert.Equal(t, Candidate{
		Title:       "Apple unveils iOS 18",
		Description: "AI features",
		URL:         "https://theverge.com/a",
		Source:      "The Verge",
		PublishedAt: time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC),
		ImageURL:    "https://img/a.png",
		Provider:    "newsapi",
	}, cands[0])
	assert.Empty(t, cands[1].Description)
}

func TestNewsAPI_LimitIsHonoured(t *testing.T) {
	t.Parallel()

	srv := serve(t, jsonBody(`{"status":"ok","articles":[
		{"source":{"name":"a"},"title":"one","url":"https://a/1"},
		{"source":{"name":"a"},"title":"two","url":"https://a/2"},
		{"source":{"name":"a"},"title":"three","url":"https://a/3"}]}`))

	cands, err := NewNewsAPI("k", WithBaseURL(srv.URL)).Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, cands, 2)
}

func TestProviders_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		h    http.HandlerFunc
		want ErrorKind
	}{
		{"unauthorized", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) }, KindAuthFailure},
		{"forbidden", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) }, KindAuthFailure},
		{"too many requests", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }, KindRateLimited},
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }, KindUnreachable},
		{"bad request", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) }, KindBadResponse},
		{"malformed json", jsonBody(`{"status":`), KindBadResponse},
		{"error envelope", jsonBody(`{"status":"error","code":"apiKeyInvalid","message":"nope"}`), KindBadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := serve(t, tt.h)
			_, err := NewNewsAPI("k", WithBaseURL(srv.URL)).Search(context.Background(), "q", 3)
			require.Error(t, err)

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.want, pe.Kind, err.Error())
			assert.Equal(t, "newsapi", pe.Provider)
		})
	}
}

func TestProviders_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewGNews("k", WithBaseURL(srv.URL)).Search(ctx, "q", 3)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestProviders_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewGuardian("k", WithBaseURL(base)).Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Equal(t, KindUnreachable, KindOf(err))
}

func TestProviders_MissingCredential(t *testing.T) {
	t.Parallel()

	for _, p := range []Provider{NewNewsAPI(" "), NewGNews(""), NewNewsData(""), NewGuardian(""), NewBing("")} {
		assert.False(t, p.Available(), p.Name())
		_, err := p.Search(context.Background(), "q", 3)
		assert.ErrorIs(t, err, ErrMissingCredential, p.Name())
	}
}

func TestGNews_Search(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		jsonBody(`{"totalArticles":1,"articles":[{"title":"ICC T20 final","description":"India win","url":"https://espn.com/x","image":"https://img/x","publishedAt":"2024-06-29T20:00:00Z","source":{"name":"ESPN","url":"https://espn.com"}}]}`)(w, r)
	})

	cands, err := NewGNews("gk", WithBaseURL(srv.URL), WithLanguage("fr")).Search(context.Background(), "India T20", 4)
	require.NoError(t, err)
	assert.Equal(t, "/api/v4/search", got.URL.Path)
	assert.Equal(t, "gk", got.URL.Query().Get("apikey"))
	assert.Equal(t, "4", got.URL.Query().Get("max"))
	assert.Equal(t, "fr", got.URL.Query().Get("lang"))
	require.Len(t, cands, 1)
	assert.Equal(t, "ESPN", cands[0].Source)
	assert.Equal(t, "gnews", cands[0].Provider)
}

func TestGNews_ErrorsField(t *testing.T) {
	t.Parallel()

	srv := serve(t, jsonBody(`{"errors":["You did not provide an API key."]}`))
	_, err := NewGNews("gk", WithBaseURL(srv.URL)).Search(context.Background(), "q", 3)
	assert.Equal(t, KindBadResponse, KindOf(err))
}

func TestNewsData_Search(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		jsonBody(`{"status":"success","totalResults":1,"results":[{"title":"Storm hits coast","description":"Heavy rain","link":"https://bbc.co.uk/s","image_url":null,"pubDate":"2024-05-01 10:00:00","source_id":"bbc"}]}`)(w, r)
	})

	cands, err := NewNewsData("nk", WithBaseURL(srv.URL)).Search(context.Background(), "storm", 50)
	require.NoError(t, err)
	assert.Equal(t, "/api/1/latest", got.URL.Path)
	assert.Equal(t, "10", got.URL.Query().Get("size"))
	require.Len(t, cands, 1)
	assert.Equal(t, "bbc", cands[0].Source)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), cands[0].PublishedAt)
}

func TestNewsData_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := serve(t, jsonBody(`{"status":"error","results":{"message":"API key invalid","code":"Unauthorized"}}`))
	_, err := NewNewsData("nk", WithBaseURL(srv.URL)).Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Equal(t, KindBadResponse, KindOf(err))
	assert.Contains(t, err.Error(), "API key invalid")
}

func TestGuardian_Search(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		jsonBody(`{"response":{"status":"ok","results":[{"webTitle":"Markets rally","webUrl":"https://theguardian.com/m","webPublicationDate":"2024-03-01T09:00:00Z","fields":{"trailText":"<p>Stocks <strong>rose</strong> sharply</p>","thumbnail":"https://img/g"}}]}}`)(w, r)
	})

	cands, err := NewGuardian("gk", WithBaseURL(srv.URL)).Search(context.Background(), "markets", 3)
	require.NoError(t, err)
	assert.Equal(t, "/search", got.URL.Path)
	assert.Equal(t, "gk", got.URL.Query().Get("api-key"))
	assert.Equal(t, "relevance", got.URL.Query().Get("order-by"))
	require.Len(t, cands, 1)
	assert.Equal(t, "Stocks rose sharply", cands[0].Description)
	assert.Equal(t, "The Guardian", cands[0].Source)
	assert.Equal(t, "https://img/g", cands[0].ImageURL)
}

func TestBing_Search(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		jsonBody(`{"value":[
			{"name":"Rover lands","description":"NASA rover","url":"https://nasa.gov/r","datePublished":"2024-02-01T12:00:00.0000000Z","provider":[{"name":"NASA"}],"image":{"thumbnail":{"contentUrl":"https://img/r"}}},
			{"name":"No provider","description":"","url":"https://x/y","datePublished":"","provider":[]}
		]}`)(w, r)
	})

	cands, err := NewBing("bk", WithBaseURL(srv.URL)).Search(context.Background(), "rover", 3)
	require.NoError(t, err)
	assert.Equal(t, "/news/search", got.URL.Path)
	assert.Equal(t, "bk", got.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, bingRapidAPIHost, got.Header.Get("X-RapidAPI-Host"))
	assert.Equal(t, "Relevance", got.URL.Query().Get("sortBy"))
	require.Len(t, cands, 2)
	assert.Equal(t, "NASA", cands[0].Source)
	assert.Equal(t, "https://img/r", cands[0].ImageURL)
	assert.Equal(t, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), cands[0].PublishedAt)
	assert.Empty(t, cands[1].Source)
}

func TestRateLimit_DeadlineReportsRateLimited(t *testing.T) {
	t.Parallel()

	srv := serve(t, jsonBody(`{"status":"ok","articles":[]}`))
	p := NewNewsAPI("k", WithBaseURL(srv.URL), WithRateLimit(0.01, 1))

	_, err := p.Search(context.Background(), "q", 1)
	require.NoError(t, err)

	// The bucket is empty and refills in 100s, far past this deadline.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = p.Search(ctx, "q", 1)
	assert.Equal(t, KindRateLimited, KindOf(err))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindTimeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindUnreachable, KindOf(errors.New("boom")))
	assert.Equal(t, "rate_limited", KindRateLimited.String())
}
