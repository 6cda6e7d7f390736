package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/yingtu35/sitemap-link-hunter/internal/webscraper"
)

// MarkdownExporter renders the report as a Markdown document, ready to be
// pasted into an issue
type MarkdownExporter struct{}

func NewMarkdownExporter() Exporter {
	return &MarkdownExporter{}
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

func (e *MarkdownExporter) Write(report *webscraper.Report, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if len(report.BrokenLinks) == 0 {
		fmt.Fprintf(bw, "# No broken links found\n\n")
		fmt.Fprintf(bw, "All internal links of %s are reachable.\n", report.Domain)
		return bw.Flush()
	}

	fmt.Fprintf(bw, "# Broken links found (%d)\n\n", len(report.BrokenLinks))
	fmt.Fprintf(bw, "The automated check of %s found the following broken internal links:\n\n", report.Domain)

	for _, link := range report.BrokenLinks {
		fmt.Fprintf(bw, "## `%s`\n\n", link.URL)
		fmt.Fprintf(bw, "**Status:** %s\n\n", link.Outcome)
		fmt.Fprintf(bw, "**Found on these pages:**\n")
		for _, page := range link.Pages {
			fmt.Fprintf(bw, "- %s\n", page)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
