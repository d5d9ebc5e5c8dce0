package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"truthlens/internal/app"
	"truthlens/internal/corroborate"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Google News</title>
<item>
  <title>Apple unveils iOS 18 with new features - The Verge</title>
  <link>https://news.google.com/rss/articles/CBMiAAA?url=https://www.theverge.com/apple-ios-18</link>
  <pubDate>Mon, 10 Jun 2024 18:00:00 GMT</pubDate>
  <description>Apple unveils iOS 18 with new features</description>
  <source url="https://www.theverge.com">The Verge</source>
</item>
</channel>
</rss>`

// isolate clears provider credentials so only the configured test server is used.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("REDIS_ADDRESS", "")
	for _, k := range []string{"NEWSAPI_KEY", "GNEWS_API_KEY", "NEWSDATA_API_KEY", "GUARDIAN_API_KEY", "BING_API_KEY"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCommandsAreRegistered(t *testing.T) {
	a := newApp()
	var names []string
	for _, cmd := range a.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"check", "providers", "serve"}, names)
}

func TestProvidersCommand(t *testing.T) {
	isolate(t)
	t.Setenv("GUARDIAN_API_KEY", "test-key")

	a := newApp()
	var out bytes.Buffer
	a.Writer = &out

	cfg := writeConfig(t, "logging:\n  level: error\n")
	require.NoError(t, a.Run([]string{"truthlens", "--config", cfg, "providers"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"newsapi", "unavailable"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"guardian", "available"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"googlenews", "available"}, strings.Fields(lines[5]))
}

func TestCheckCommand_EndToEnd(t *testing.T) {
	isolate(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedFixture))
	}))
	t.Cleanup(srv.Close)

	cfg := writeConfig(t, `
providers:
  google_news:
    enabled: true
    base_url: `+srv.URL+`
engine:
  call_timeout: 5s
  pool_size: 4
logging:
  level: error
`)
	report := filepath.Join(t.TempDir(), "report.docx")

	a := newApp()
	var out bytes.Buffer
	a.Writer = &out

	err := a.Run([]string{"truthlens", "--config", cfg, "check",
		"--label", "real", "--confidence", "0.9", "--report", report,
		"Apple unveils iOS 18"})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Assessment: Authentic")
	assert.Contains(t, got, "https://www.theverge.com/apple-ios-18")
	assert.Contains(t, got, "via googlenews")
	assert.FileExists(t, report)
}

func TestCheckCommand_InvalidLabel(t *testing.T) {
	isolate(t)

	a := newApp()
	a.Writer = &bytes.Buffer{}
	err := a.Run([]string{"truthlens", "check", "--label", "maybe", "some news text"})
	assert.ErrorIs(t, err, app.ErrInvalidVerdict)
}

func TestPromptText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	in := strings.NewReader("12 34\n\nNASA rover lands on Mars\n\n")
	text, err := promptText(in, &out)
	require.NoError(t, err)
	assert.Equal(t, "NASA rover lands on Mars", text)
	assert.Contains(t, out.String(), "Input rejected: no words detected")

	_, err = promptText(strings.NewReader(""), &out)
	assert.ErrorIs(t, err, errNoText)
}

func TestPrintAnalysis(t *testing.T) {
	t.Parallel()

	a := &app.Analysis{
		Assessment: app.Assessment{Status: "Uncorroborated", Message: "No matching coverage."},
		Result: corroborate.Result{
			Query:      "NASA Rover Lands Mars",
			Variants:   []string{"NASA Rover Lands", "Rover Lands Mars"},
			References: []corroborate.Reference{corroborate.Placeholder("NASA Rover Lands Mars")},
		},
	}
	var out bytes.Buffer
	printAnalysis(&out, a)

	got := out.String()
	assert.Contains(t, got, "Variants:   NASA Rover Lands | Rover Lands Mars\n")
	assert.Contains(t, got, corroborate.PlaceholderTitle)
	assert.Contains(t, got, "https://news.google.com/search?q=NASA+Rover+Lands+Mars")
	assert.NotContains(t, got, "relevance")
}

func TestSetupUsesConfig(t *testing.T) {
	isolate(t)

	cfg := writeConfig(t, "engine:\n  call_timeout: 3s\nlogging:\n  level: error\n")
	a := newApp()
	var rt *runtime
	a.Commands = append(a.Commands, &cli.Command{
		Name: "inspect",
		Action: func(c *cli.Context) error {
			var err error
			rt, err = setup(c, true)
			return err
		},
	})
	require.NoError(t, a.Run([]string{"truthlens", "--config", cfg, "inspect"}))
	require.NotNil(t, rt)
	defer rt.close()

	assert.Equal(t, 3*time.Second, rt.cfg.Engine.CallTimeout)
	assert.Nil(t, rt.store, "cache stays off without an address")
	assert.Equal(t, []string{"googlenews"}, rt.engine.Providers())
}
