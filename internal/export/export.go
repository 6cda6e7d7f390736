package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yingtu35/sitemap-link-hunter/internal/webscraper"
)

type Exporter interface {
	// Write encodes the report to w
	Write(report *webscraper.Report, w io.Writer) error
	// Extension returns the file extension of the format, without the dot
	Extension() string
}

// New returns the exporter for a format name: md, json or csv
func New(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return NewMarkdownExporter(), nil
	case "json":
		return NewJsonExporter(), nil
	case "csv":
		return NewCSVExporter(), nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

// createFile opens the destination of a report, replaced in tests
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// Export writes the report to filename with the exporter's extension appended
// and returns the path of the written file.
func Export(e Exporter, report *webscraper.Report, filename string) (path string, err error) {
	path = filename + "." + e.Extension()
	file, err := createFile(path)
	if err != nil {
		return "", fmt.Errorf("error creating file %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			path, err = "", fmt.Errorf("error closing file %s: %w", path, closeErr)
		}
	}()

	if err := e.Write(report, file); err != nil {
		return "", fmt.Errorf("error exporting report to %s: %w", path, err)
	}
	return path, nil
}
