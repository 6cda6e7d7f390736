package webscraper

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSitemapURL is returned when no hostname can be derived from the sitemap URL
	ErrInvalidSitemapURL = errors.New("invalid sitemap URL")
	// ErrSitemapFetch is returned when the sitemap cannot be fetched or parsed
	ErrSitemapFetch = errors.New("sitemap fetch failed")
	// ErrNoPages is returned when the sitemap lists no pages
	ErrNoPages = errors.New("no pages found in sitemap")
	// ErrPageFetch marks a page that could not be fetched
	ErrPageFetch = errors.New("page fetch failed")
)

// PageStatusError is returned when a page answers with an error status
type PageStatusError struct {
	StatusCode int
}

func (e *PageStatusError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrPageFetch, e.StatusCode)
}

func (e *PageStatusError) Unwrap() error {
	return ErrPageFetch
}
