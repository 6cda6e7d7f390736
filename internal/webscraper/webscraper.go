package webscraper

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rodaine/table"
	"github.com/sirupsen/logrus"
	"github.com/yingtu35/sitemap-link-hunter/pkg/domain"
)

// brokenLink accumulates the pages on which a broken URL was found
type brokenLink struct {
	outcome ProbeOutcome
	pages   mapset.Set[string]
}

type DeadLinkHunter struct {
	sitemapURL string             // The sitemap listing the pages to check
	domain     string             // The hostname links must share to be checked
	log        logrus.FieldLogger // The logger to report progress to
	loader     *SitemapLoader     // Loads the page list
	scanner    *PageScanner       // Scans one page for broken links
	cache      *ResultCache       // Outcomes of every URL probed during the run

	brokenLinks map[string]*brokenLink // broken URL -> pages referencing it
	brokenMu    sync.Mutex             // A mutex to protect brokenLinks

	summary RunSummary
}

// NewDeadLinkHunter prepares a run for sitemapURL. Links are checked only
// when they are hosted on the sitemap's own hostname.
func NewDeadLinkHunter(sitemapURL string, options *ScraperOptions) (*DeadLinkHunter, error) {
	host, err := domain.GetDomain(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSitemapURL, sitemapURL, err)
	}

	options = options.withDefaults()
	cache := NewResultCache()

	return &DeadLinkHunter{
		sitemapURL:  sitemapURL,
		domain:      host,
		log:         options.Logger,
		loader:      NewSitemapLoader(options),
		scanner:     NewPageScanner(host, cache, options),
		cache:       cache,
		brokenLinks: make(map[string]*brokenLink),
	}, nil
}

// Domain returns the hostname whose links are checked
func (d *DeadLinkHunter) Domain() string {
	return d.domain
}

// StartHunting loads the sitemap and scans its pages one after another.
// The returned summary is never nil; the error is set when the sitemap could
// not be loaded, listed no page, or ctx was cancelled.
func (d *DeadLinkHunter) StartHunting(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	d.log.Infof("Checking internal links of %s", d.domain)

	pages, err := d.loader.Load(ctx, d.sitemapURL)
	if err != nil {
		return d.finish(start, false), err
	}
	d.summary.PagesListed = len(pages)
	if len(pages) == 0 {
		return d.finish(start, false), ErrNoPages
	}

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return d.finish(start, false), err
		}

		d.log.Infof("Checking page (%d/%d): %s", i+1, len(pages), page)
		findings, err := d.scanner.ScanPage(ctx, page)
		if err != nil {
			d.summary.PagesFailed++
		} else {
			d.summary.PagesScanned++
		}

		if err == nil && len(findings) == 0 {
			d.log.Info("All internal links look fine")
			continue
		}
		for _, finding := range findings {
			d.log.WithFields(logrus.Fields{"page": page, "status": finding.Outcome}).Warnf("Broken link: %s", finding.URL)
			d.addDeadLink(page, finding)
		}
	}

	return d.finish(start, true), nil
}

func (d *DeadLinkHunter) finish(start time.Time, completed bool) *RunSummary {
	d.brokenMu.Lock()
	broken := len(d.brokenLinks)
	d.brokenMu.Unlock()

	d.summary.URLsProbed = d.cache.Len()
	d.summary.BrokenLinks = broken
	d.summary.Elapsed = time.Since(start)
	d.summary.Success = completed && broken == 0

	summary := d.summary
	return &summary
}

func (d *DeadLinkHunter) addDeadLink(page string, finding Finding) {
	d.brokenMu.Lock()
	defer d.brokenMu.Unlock()

	record, ok := d.brokenLinks[finding.URL]
	if !ok {
		record = &brokenLink{
			outcome: finding.Outcome,
			pages:   mapset.NewThreadUnsafeSet[string](),
		}
		d.brokenLinks[finding.URL] = record
	}
	record.pages.Add(page)
}

// GetResults returns the report of the last run, broken links sorted by URL
// and their pages sorted as well
func (d *DeadLinkHunter) GetResults() *Report {
	d.brokenMu.Lock()
	defer d.brokenMu.Unlock()

	links := make([]BrokenLink, 0, len(d.brokenLinks))
	for url, record := range d.brokenLinks {
		pages := record.pages.ToSlice()
		sort.Strings(pages)
		links = append(links, BrokenLink{URL: url, Outcome: record.outcome, Pages: pages})
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].URL < links[j].URL
	})

	return &Report{
		SitemapURL:  d.sitemapURL,
		Domain:      d.domain,
		GeneratedAt: time.Now(),
		Summary:     d.summary,
		BrokenLinks: links,
	}
}

// PrintResults writes the run summary and a table of broken links to w
func (d *DeadLinkHunter) PrintResults(w io.Writer) {
	report := d.GetResults()
	summary := report.Summary

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Pages checked: %d/%d\n", summary.PagesScanned, summary.PagesListed)
	if summary.PagesFailed > 0 {
		fmt.Fprintf(w, "Pages that could not be read: %d\n", summary.PagesFailed)
	}
	fmt.Fprintf(w, "Unique internal links checked: %d\n", summary.URLsProbed)
	fmt.Fprintf(w, "Total time: %.2fs\n", summary.Elapsed.Seconds())
	fmt.Fprintln(w)

	if len(report.BrokenLinks) == 0 {
		fmt.Fprintln(w, "No dead links found")
		return
	}

	fmt.Fprintf(w, "Found %d unique dead links\n", len(report.BrokenLinks))
	tbl := table.New("Dead Link", "Status", "Found On").WithWriter(w)
	for _, link := range report.BrokenLinks {
		for i, page := range link.Pages {
			if i == 0 {
				tbl.AddRow(link.URL, link.Outcome, page)
			} else {
				tbl.AddRow("", "", page)
			}
		}
	}
	tbl.Print()
}
