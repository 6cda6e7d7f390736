package webscraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeProber records probes and answers from a fixed table, OK by default
type fakeProber struct {
	mu       sync.Mutex
	calls    map[string]int
	outcomes map[string]ProbeOutcome
	delay    time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeProber(outcomes map[string]ProbeOutcome) *fakeProber {
	if outcomes == nil {
		outcomes = map[string]ProbeOutcome{}
	}
	return &fakeProber{calls: map[string]int{}, outcomes: outcomes}
}

func (f *fakeProber) Probe(_ context.Context, url string) ProbeOutcome {
	current := f.inFlight.Add(1)
	for {
		max := f.maxInFlight.Load()
		if current <= max || f.maxInFlight.CompareAndSwap(max, current) {
			break
		}
	}
	defer f.inFlight.Add(-1)

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if outcome, ok := f.outcomes[url]; ok {
		return outcome
	}
	return OK(http.StatusOK)
}

func (f *fakeProber) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeProber) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// site serves HTML pages by path; "{{base}}" in a page is replaced with the server URL
type site struct {
	*httptest.Server
	mu     sync.Mutex
	pages  map[string]string
	status map[string]int
	hits   map[string]int
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{pages: map[string]string{}, status: map[string]int{}, hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, hasPage := s.pages[r.URL.Path]
	status, hasStatus := s.status[r.URL.Path]
	s.mu.Unlock()

	switch {
	case hasStatus:
		w.WriteHeader(status)
	case hasPage:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, strings.ReplaceAll(body, "{{base}}", s.URL))
	default:
		http.NotFound(w, r)
	}
}

func (s *site) Page(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = body
}

func (s *site) Status(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = status
}

func (s *site) Sitemap(paths ...string) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, p := range paths {
		fmt.Fprintf(&b, "<url><loc>{{base}}%s</loc></url>", p)
	}
	b.WriteString(`</urlset>`)
	s.Page("/sitemap.xml", b.String())
}

func (s *site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func testOptions() (*ScraperOptions, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	options := DefaultOptions()
	options.Logger = logger
	return options, hook
}
