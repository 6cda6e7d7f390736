package domain

import (
	"errors"
	"net/url"
	"strings"
)

// skippablePrefixes are hrefs that never lead to a fetchable resource
var skippablePrefixes = []string{"mailto:", "tel:", "javascript:", "#"}

// GetProtocol returns the lower-cased scheme of a given URL
func GetProtocol(u string) (string, error) {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return "", errors.New("error parsing URL")
	}
	return strings.ToLower(parsedUrl.Scheme), nil
}

// GetDomain returns the lower-cased hostname of a given URL, without port.
// An error is returned when the URL has no host.
func GetDomain(u string) (string, error) {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return "", errors.New("error parsing URL")
	}
	hostname := strings.ToLower(parsedUrl.Hostname())
	if hostname == "" {
		return "", errors.New("URL has no hostname")
	}
	return hostname, nil
}

// IsSameDomain reports whether u is hosted on domain
func IsSameDomain(domain string, u string) bool {
	d, err := GetDomain(u)
	return err == nil && strings.EqualFold(domain, d)
}

// IsInScope reports whether u should be probed for a site rooted at
// baseDomain: the scheme must be http or https and the hostname must match.
func IsInScope(u string, baseDomain string) bool {
	protocol, err := GetProtocol(u)
	if err != nil || (protocol != "http" && protocol != "https") {
		return false
	}
	return IsSameDomain(baseDomain, u)
}

// IsSkippable reports whether a raw href points at something other than a
// fetchable resource (mail, phone, script or in-page anchor).
func IsSkippable(href string) bool {
	for _, prefix := range skippablePrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

// Normalize resolves href against base and drops the fragment.
// Everything else is kept as-is, so two links are the same target only if
// their normalized strings are equal.
func Normalize(href string, base string) (string, error) {
	baseUrl, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	resolved := baseUrl.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), nil
}
