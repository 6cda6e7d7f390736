package webscraper

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// PageErrorPolicy decides what happens when a sitemap page itself answers with an error status
type PageErrorPolicy string

const (
	// PageErrorReport records the page as a broken link found on itself
	PageErrorReport PageErrorPolicy = "report"
	// PageErrorSkip logs a warning and contributes no findings
	PageErrorSkip PageErrorPolicy = "skip"
)

// ParsePageErrorPolicy validates a policy name
func ParsePageErrorPolicy(s string) (PageErrorPolicy, error) {
	switch p := PageErrorPolicy(s); p {
	case PageErrorReport, PageErrorSkip:
		return p, nil
	}
	return "", fmt.Errorf("unknown page error policy %q (want %q or %q)", s, PageErrorReport, PageErrorSkip)
}

type ScraperOptions struct {
	MaxConcurrency    int                // maximum number of concurrent probes within a page
	LinkTimeout       time.Duration      // timeout of a single link probe
	PageTimeout       time.Duration      // timeout of a page fetch
	UserAgent         string             // User-Agent header sent with every request
	PageErrorPolicy   PageErrorPolicy    // handling of pages answering >= 400
	RequestsPerSecond float64            // probe rate limit, 0 means unlimited
	Transport         http.RoundTripper  // optional transport shared by all clients
	Prober            LinkProber         // optional prober, defaults to an HTTP Prober
	Logger            logrus.FieldLogger // defaults to the logrus standard logger
}

// DefaultOptions returns the reference configuration
func DefaultOptions() *ScraperOptions {
	return &ScraperOptions{
		MaxConcurrency:  MaxConcurrency,
		LinkTimeout:     DefaultLinkTimeout,
		PageTimeout:     DefaultPageTimeout,
		UserAgent:       DefaultUserAgent,
		PageErrorPolicy: PageErrorReport,
	}
}

// withDefaults returns a copy of o with every unset field filled in
func (o *ScraperOptions) withDefaults() *ScraperOptions {
	opts := DefaultOptions()
	if o == nil {
		opts.Logger = logrus.StandardLogger()
		return opts
	}
	merged := *o
	if merged.MaxConcurrency <= 0 {
		merged.MaxConcurrency = opts.MaxConcurrency
	}
	if merged.LinkTimeout <= 0 {
		merged.LinkTimeout = opts.LinkTimeout
	}
	if merged.PageTimeout <= 0 {
		merged.PageTimeout = opts.PageTimeout
	}
	if merged.UserAgent == "" {
		merged.UserAgent = opts.UserAgent
	}
	if merged.PageErrorPolicy == "" {
		merged.PageErrorPolicy = opts.PageErrorPolicy
	}
	if merged.Logger == nil {
		merged.Logger = logrus.StandardLogger()
	}
	return &merged
}

// newClient builds an HTTP client that follows redirects, timeouts are applied per request
func (o *ScraperOptions) newClient() *http.Client {
	transport := o.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{Transport: transport}
}
