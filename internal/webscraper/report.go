package webscraper

import "time"

// RunSummary describes the outcome of one hunting run
type RunSummary struct {
	PagesListed  int           // pages found in the sitemap
	PagesScanned int           // pages fetched and scanned for links
	PagesFailed  int           // pages whose fetch failed or returned an error status
	URLsProbed   int           // distinct URLs in the result cache
	BrokenLinks  int           // distinct broken links
	Elapsed      time.Duration // wall time of the run
	Success      bool          // sitemap loaded, pages found, no broken link
}

// ExitCode returns the process exit status for the run
func (s *RunSummary) ExitCode() int {
	if s == nil || !s.Success {
		return 1
	}
	return 0
}

// BrokenLink is one broken URL with the sorted pages that reference it
type BrokenLink struct {
	URL     string
	Outcome ProbeOutcome
	Pages   []string
}

// Report is the data exported at the end of a run.
// BrokenLinks is sorted by URL.
type Report struct {
	SitemapURL  string
	Domain      string
	GeneratedAt time.Time
	Summary     RunSummary
	BrokenLinks []BrokenLink
}
