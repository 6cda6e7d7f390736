package webscraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/sirupsen/logrus"
)

// SitemapLoader fetches a sitemap and lists the pages it references
type SitemapLoader struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	log       logrus.FieldLogger
}

func NewSitemapLoader(options *ScraperOptions) *SitemapLoader {
	options = options.withDefaults()
	return &SitemapLoader{
		client:    options.newClient(),
		timeout:   options.PageTimeout,
		userAgent: options.UserAgent,
		log:       options.Logger,
	}
}

// Load returns the text of every <loc> element of the sitemap, in document
// order. Any failure to fetch or parse the document wraps ErrSitemapFetch.
func (l *SitemapLoader) Load(ctx context.Context, sitemapURL string) ([]string, error) {
	l.log.Infof("Loading sitemap from %s", sitemapURL)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSitemapFetch, err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSitemapFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrSitemapFetch, resp.StatusCode)
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing XML: %w", ErrSitemapFetch, err)
	}

	locs, err := xmlquery.QueryAll(doc, "//loc")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSitemapFetch, err)
	}

	urls := make([]string, 0, len(locs))
	for _, loc := range locs {
		u := strings.TrimSpace(loc.InnerText())
		if u == "" {
			l.log.Debug("Skipping empty <loc> element")
			continue
		}
		urls = append(urls, u)
	}

	l.log.Infof("Found %d URLs in sitemap", len(urls))
	return urls, nil
}
