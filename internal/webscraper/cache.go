package webscraper

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ResultCache maps normalized URLs to their probe outcome for one run.
// An entry is written once and never replaced.
type ResultCache struct {
	mu      sync.Mutex              // protects entries
	entries map[string]ProbeOutcome // normalized URL -> outcome
	flight  singleflight.Group      // collapses concurrent probes of one URL
}

func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[string]ProbeOutcome),
	}
}

// Get returns the cached outcome of url, if any
func (c *ResultCache) Get(url string) (ProbeOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	outcome, ok := c.entries[url]
	return outcome, ok
}

// Store records outcome for url unless an outcome is already present, and
// returns the outcome that ends up in the cache.
func (c *ResultCache) Store(url string, outcome ProbeOutcome) ProbeOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[url]; ok {
		return existing
	}
	c.entries[url] = outcome
	return outcome
}

// Partition splits urls into those with a known outcome and those that still
// need probing. The whole split runs under one lock.
func (c *ResultCache) Partition(urls []string) (known map[string]ProbeOutcome, pending []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	known = make(map[string]ProbeOutcome)
	for _, url := range urls {
		if outcome, ok := c.entries[url]; ok {
			known[url] = outcome
			continue
		}
		pending = append(pending, url)
	}
	return known, pending
}

// Resolve returns the outcome of url, probing it with prober if it is not
// cached yet. Concurrent calls for the same url share a single probe, and the
// outcome is stored before any caller returns, so a url is probed at most once.
func (c *ResultCache) Resolve(ctx context.Context, url string, prober LinkProber) ProbeOutcome {
	val, _, _ := c.flight.Do(url, func() (interface{}, error) {
		if outcome, ok := c.Get(url); ok {
			return outcome, nil
		}
		return c.Store(url, prober.Probe(ctx, url)), nil
	})
	return val.(ProbeOutcome)
}

// Len returns the number of distinct URLs probed so far
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
