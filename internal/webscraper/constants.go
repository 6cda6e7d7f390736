package webscraper

import "time"

const (
	MaxConcurrency     = 10               // maximum number of concurrent link probes per page
	DefaultLinkTimeout = 7 * time.Second  // timeout of a single link probe
	DefaultPageTimeout = 10 * time.Second // timeout of a page fetch, pages are heavier than probes

	// DefaultUserAgent mimics a desktop browser, some servers reject bot user agents
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)
