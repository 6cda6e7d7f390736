package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/yingtu35/sitemap-link-hunter/internal/webscraper"
)

type Record struct {
	DeadLink string   `json:"Dead Link"`
	Status   string   `json:"Status"`
	Counts   int      `json:"Counts"`
	FoundOn  []string `json:"Found On"`
}

type jsonReport struct {
	Sitemap      string    `json:"Sitemap"`
	Domain       string    `json:"Domain"`
	GeneratedAt  time.Time `json:"Generated At"`
	PagesChecked int       `json:"Pages Checked"`
	PagesFailed  int       `json:"Pages Failed"`
	LinksChecked int       `json:"Links Checked"`
	DeadLinks    []Record  `json:"Dead Links"`
}

type JsonExporter struct{}

func NewJsonExporter() Exporter {
	return &JsonExporter{}
}

func (e *JsonExporter) Extension() string {
	return "json"
}

func (e *JsonExporter) Write(report *webscraper.Report, w io.Writer) error {
	result := jsonReport{
		Sitemap:      report.SitemapURL,
		Domain:       report.Domain,
		GeneratedAt:  report.GeneratedAt,
		PagesChecked: report.Summary.PagesScanned,
		PagesFailed:  report.Summary.PagesFailed,
		LinksChecked: report.Summary.URLsProbed,
		DeadLinks:    e.transformData(report),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return encoder.Encode(result)
}

func (e *JsonExporter) transformData(report *webscraper.Report) []Record {
	records := make([]Record, 0, len(report.BrokenLinks))
	for _, link := range report.BrokenLinks {
		records = append(records, Record{
			DeadLink: link.URL,
			Status:   link.Outcome.String(),
			Counts:   len(link.Pages),
			FoundOn:  link.Pages,
		})
	}
	return records
}
