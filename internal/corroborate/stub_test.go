package corroborate

import (
	"context"
	"sync"
	"time"

	"truthlens/internal/discovery"
)

// stubProvider answers from fixed tables and records the queries it saw.
type stubProvider struct {
	name        string
	unavailable bool
	// byQuery answers specific queries; others get all.
	byQuery map[string][]discovery.Candidate
	all     []discovery.Candidate
	err     error
	// hang blocks the call for this long, ignoring ctx.
	hang  time.Duration
	panic bool

	mu    sync.Mutex
	calls []string
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return !s.unavailable }

func (s *stubProvider) Search(_ context.Context, q string, limit int) ([]discovery.Candidate, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	s.mu.Unlock()

	if s.hang > 0 {
		time.Sleep(s.hang)
	}
	if s.panic {
		panic("stub exploded")
	}
	if s.err != nil {
		return nil, s.err
	}

	src := s.all
	if c, ok := s.byQuery[q]; ok {
		src = c
	}
	out := make([]discovery.Candidate, 0, len(src))
	for _, c := range src {
		if len(out) >= limit {
			break
		}
		c.Provider = s.name
		out = append(out, c)
	}
	return out, nil
}

func (s *stubProvider) queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func cand(title, desc, url string) discovery.Candidate {
	return discovery.Candidate{Title: title, Description: desc, URL: url, Source: "stub"}
}
