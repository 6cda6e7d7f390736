package webscraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"github.com/yingtu35/sitemap-link-hunter/pkg/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
)

// PageScanner checks every internal link of one page at a time
type PageScanner struct {
	client         *http.Client
	prober         LinkProber
	cache          *ResultCache
	domain         string
	maxConcurrency int
	pageTimeout    time.Duration
	userAgent      string
	policy         PageErrorPolicy
	log            logrus.FieldLogger
}

// NewPageScanner creates a scanner for links hosted on baseDomain. Outcomes
// are shared through cache, so a link found on several pages is probed once.
func NewPageScanner(baseDomain string, cache *ResultCache, options *ScraperOptions) *PageScanner {
	options = options.withDefaults()

	prober := options.Prober
	if prober == nil {
		prober = NewProber(options)
	}

	return &PageScanner{
		client:         options.newClient(),
		prober:         prober,
		cache:          cache,
		domain:         baseDomain,
		maxConcurrency: options.MaxConcurrency,
		pageTimeout:    options.PageTimeout,
		userAgent:      options.UserAgent,
		policy:         options.PageErrorPolicy,
		log:            options.Logger,
	}
}

// ScanPage returns the broken or unreachable links of pageURL, sorted by URL.
// Links already in the cache are reported without being probed again, the
// others are probed concurrently and ScanPage returns once all of them are done.
// The error is set when the page itself could not be read; a broken page may
// still come back as a finding, depending on the page error policy.
func (s *PageScanner) ScanPage(ctx context.Context, pageURL string) ([]Finding, error) {
	log := s.log.WithField("page", pageURL)

	doc, err := s.fetchPage(ctx, pageURL)
	var statusErr *PageStatusError
	if errors.As(err, &statusErr) {
		return s.handleBrokenPage(log, pageURL, statusErr.StatusCode), err
	}
	if err != nil {
		log.WithError(err).Warn("Error fetching page")
		return nil, err
	}

	links := s.getAllLinks(log, doc, pageURL)
	if len(links) == 0 {
		return nil, nil
	}

	known, pending := s.cache.Partition(links)

	var findings []Finding
	var findingsMu sync.Mutex

	for url, outcome := range known {
		if outcome.IsFinding() {
			findings = append(findings, Finding{URL: url, Outcome: outcome})
		}
	}

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for _, link := range pending {
		g.Go(func() error {
			outcome := s.cache.Resolve(ctx, link, s.prober)
			log.WithFields(logrus.Fields{"url": link, "outcome": outcome}).Debug("Link probed")
			if outcome.IsFinding() {
				findingsMu.Lock()
				findings = append(findings, Finding{URL: link, Outcome: outcome})
				findingsMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].URL < findings[j].URL
	})
	return findings, nil
}

func (s *PageScanner) handleBrokenPage(log logrus.FieldLogger, pageURL string, statusCode int) []Finding {
	log = log.WithField("status", statusCode)
	if s.policy == PageErrorSkip {
		log.Warn("Page itself is broken, skipping it")
		return nil
	}
	log.Error("Page itself is broken")
	return []Finding{{URL: pageURL, Outcome: Broken(statusCode)}}
}

// fetchPage downloads pageURL and parses it into a document
func (s *PageScanner) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.pageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageFetch, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageFetch, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, &PageStatusError{StatusCode: res.StatusCode}
	}

	body, err := charset.NewReader(res.Body, res.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding body: %w", ErrPageFetch, err)
	}
	root, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %w", ErrPageFetch, err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// getAllLinks returns the distinct in-scope links of doc, normalized and sorted
func (s *PageScanner) getAllLinks(log logrus.FieldLogger, doc *goquery.Document, pageURL string) []string {
	links := mapset.NewThreadUnsafeSet[string]()

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link, err := domain.Normalize(strings.TrimSpace(href), pageURL)
		if err != nil {
			log.WithError(err).WithField("href", href).Warn("Error parsing URL")
			return
		}
		if !domain.IsInScope(link, s.domain) {
			return
		}
		links.Add(link)
	})

	result := links.ToSlice()
	sort.Strings(result)
	return result
}
