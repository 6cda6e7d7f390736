package export

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/yingtu35/sitemap-link-hunter/internal/webscraper"
)

type DeadLinkRow struct {
	DeadLink string `csv:"Dead Link,omitempty"`
	Status   string `csv:"Status,omitempty"`
	Counts   string `csv:"Counts,omitempty"`
	FoundOn  string `csv:"Found On"`
}

type CSVExporter struct{}

func NewCSVExporter() Exporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Extension() string {
	return "csv"
}

func (e *CSVExporter) Write(report *webscraper.Report, w io.Writer) error {
	rows := e.transformData(report)
	return gocsv.Marshal(&rows, w)
}

// transformData emits one row per referencing page, the link columns are
// only filled on the first row of each link
func (e *CSVExporter) transformData(report *webscraper.Report) []DeadLinkRow {
	var rows []DeadLinkRow
	for _, link := range report.BrokenLinks {
		for i, page := range link.Pages {
			if i == 0 {
				rows = append(rows, DeadLinkRow{
					DeadLink: link.URL,
					Status:   link.Outcome.String(),
					Counts:   strconv.Itoa(len(link.Pages)),
					FoundOn:  page,
				})
			} else {
				rows = append(rows, DeadLinkRow{FoundOn: page})
			}
		}
	}
	return rows
}
