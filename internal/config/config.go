package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/yingtu35/sitemap-link-hunter/internal/export"
	"github.com/yingtu35/sitemap-link-hunter/internal/webscraper"
)

// Config holds all runtime configuration parameters
type Config struct {
	LinkTimeoutMs     int      `json:"link_timeout_ms"`
	PageTimeoutMs     int      `json:"page_timeout_ms"`
	MaxConcurrency    int      `json:"max_concurrency"`
	UserAgent         string   `json:"user_agent"`
	PageErrorPolicy   string   `json:"page_error_policy"`
	RequestsPerSecond float64  `json:"requests_per_second"`
	ReportPath        string   `json:"report_path"`
	ReportFormats     []string `json:"report_formats"`
	AlwaysReport      bool     `json:"always_report"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// LoadConfig reads and validates configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.LinkTimeoutMs == 0 {
		cfg.LinkTimeoutMs = int(webscraper.DefaultLinkTimeout / time.Millisecond)
	}
	if cfg.PageTimeoutMs == 0 {
		cfg.PageTimeoutMs = int(webscraper.DefaultPageTimeout / time.Millisecond)
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = webscraper.MaxConcurrency
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = webscraper.DefaultUserAgent
	}
	if cfg.PageErrorPolicy == "" {
		cfg.PageErrorPolicy = string(webscraper.PageErrorReport)
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = "broken_links_report"
	}
	if len(cfg.ReportFormats) == 0 {
		cfg.ReportFormats = []string{"md"}
	}
}

// Validate checks that values are sensible. It is exported so the values can
// be checked again after command line overrides.
func (cfg *Config) Validate() error {
	if cfg.LinkTimeoutMs < 1 {
		return fmt.Errorf("link_timeout_ms must be >= 1")
	}
	if cfg.PageTimeoutMs < 1 {
		return fmt.Errorf("page_timeout_ms must be >= 1")
	}
	if cfg.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be >= 1")
	}
	if cfg.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0")
	}
	if _, err := webscraper.ParsePageErrorPolicy(cfg.PageErrorPolicy); err != nil {
		return err
	}
	for _, format := range cfg.ReportFormats {
		if _, err := export.New(format); err != nil {
			return err
		}
	}
	return nil
}

// ScraperOptions converts the configuration into hunter options.
// The configuration must have been validated.
func (cfg *Config) ScraperOptions() *webscraper.ScraperOptions {
	policy, _ := webscraper.ParsePageErrorPolicy(cfg.PageErrorPolicy)
	return &webscraper.ScraperOptions{
		MaxConcurrency:    cfg.MaxConcurrency,
		LinkTimeout:       time.Duration(cfg.LinkTimeoutMs) * time.Millisecond,
		PageTimeout:       time.Duration(cfg.PageTimeoutMs) * time.Millisecond,
		UserAgent:         cfg.UserAgent,
		PageErrorPolicy:   policy,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}

// Exporters returns one exporter per configured report format
func (cfg *Config) Exporters() ([]export.Exporter, error) {
	exporters := make([]export.Exporter, 0, len(cfg.ReportFormats))
	for _, format := range cfg.ReportFormats {
		e, err := export.New(format)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, e)
	}
	return exporters, nil
}
