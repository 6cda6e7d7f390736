package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/yingtu35/sitemap-link-hunter/internal/config"
	"github.com/yingtu35/sitemap-link-hunter/internal/export"
	"github.com/yingtu35/sitemap-link-hunter/internal/webscraper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one audit and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sitemap-link-hunter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: sitemap-link-hunter [flags] <sitemap-url>\n")
		fmt.Fprintf(stderr, "Example: sitemap-link-hunter https://example.com/sitemap.xml\n\n")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "path to a JSON config file")
	workers := fs.Int("workers", webscraper.MaxConcurrency, "maximum concurrent link checks per page")
	linkTimeout := fs.Duration("link-timeout", webscraper.DefaultLinkTimeout, "timeout of a single link check")
	pageTimeout := fs.Duration("page-timeout", webscraper.DefaultPageTimeout, "timeout of a page fetch")
	pageErrors := fs.String("page-errors", string(webscraper.PageErrorReport), "how to treat sitemap pages answering >= 400: report or skip")
	rps := fs.Float64("rps", 0, "maximum link checks per second, 0 for unlimited")
	reportPath := fs.String("report", "broken_links_report", "report file path, without extension")
	formats := fs.String("format", "md", "comma separated report formats: md, json, csv")
	alwaysReport := fs.Bool("always-report", false, "write the report even when no broken link is found")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: a sitemap URL is required")
		fs.Usage()
		return 1
	}
	sitemapURL := fs.Arg(0)

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			logger.Errorf("Failed to load config: %v", err)
			return 1
		}
		cfg = loaded
	}

	// flags given explicitly win over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.MaxConcurrency = *workers
		case "link-timeout":
			cfg.LinkTimeoutMs = int(linkTimeout.Milliseconds())
		case "page-timeout":
			cfg.PageTimeoutMs = int(pageTimeout.Milliseconds())
		case "page-errors":
			cfg.PageErrorPolicy = *pageErrors
		case "rps":
			cfg.RequestsPerSecond = *rps
		case "report":
			cfg.ReportPath = *reportPath
		case "format":
			cfg.ReportFormats = splitList(*formats)
		case "always-report":
			cfg.AlwaysReport = *alwaysReport
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		return 1
	}

	options := cfg.ScraperOptions()
	options.Logger = logger

	dlh, err := webscraper.NewDeadLinkHunter(sitemapURL, options)
	if err != nil {
		logger.Errorf("Critical error: %v", err)
		return 1
	}

	summary, err := dlh.StartHunting(ctx)
	if errors.Is(err, webscraper.ErrSitemapFetch) || errors.Is(err, webscraper.ErrNoPages) {
		logger.Errorf("Cannot check links: %v", err)
		return summary.ExitCode()
	}
	if err != nil {
		logger.Warnf("Run interrupted: %v", err)
	}

	dlh.PrintResults(stdout)

	report := dlh.GetResults()
	if len(report.BrokenLinks) > 0 || cfg.AlwaysReport {
		if err := writeReports(cfg, report, logger); err != nil {
			logger.Errorf("Error writing report: %v", err)
		}
	}

	return summary.ExitCode()
}

func writeReports(cfg *config.Config, report *webscraper.Report, logger logrus.FieldLogger) error {
	exporters, err := cfg.Exporters()
	if err != nil {
		return err
	}
	for _, e := range exporters {
		path, err := export.Export(e, report, cfg.ReportPath)
		if err != nil {
			return err
		}
		logger.Infof("Report saved to %s", path)
	}
	return nil
}

// splitList splits a comma separated flag value, dropping blanks around items
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
