// Package urlutil normalizes URLs and bare domains into the canonical form
// used as the catalog key: lowercase host, no scheme, no port, no leading www.
package urlutil

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrEmptyDomain is returned when the input yields no usable host.
var ErrEmptyDomain = errors.New("empty or unparseable domain")

// Normalize extracts the canonical domain from a URL or bare domain string.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyDomain
	}

	host := raw
	if strings.Contains(raw, "/") || strings.Contains(raw, "://") {
		withScheme := raw
		if !strings.Contains(raw, "://") {
			withScheme = "http://" + raw
		}
		u, err := url.Parse(withScheme)
		if err != nil || u.Hostname() == "" {
			return "", ErrEmptyDomain
		}
		host = u.Hostname()
	}

	host = strings.ToLower(host)
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host, "]") {
		host = host[:idx]
	}
	host = strings.TrimPrefix(host, "www.")
	host = strings.Trim(host, ".")

	if host == "" || !strings.Contains(host, ".") {
		return "", ErrEmptyDomain
	}
	return host, nil
}

// RegistrableDomain returns the eTLD+1 of a normalized domain, e.g.
// "edition.cnn.com" -> "cnn.com". Falls back to the input when the public
// suffix list cannot produce one (private suffixes, bare TLDs).
func RegistrableDomain(domain string) string {
	reg, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return domain
	}
	return reg
}

// CountryLabel returns the final label of the domain's public suffix, which
// for country-code suffixes ("co.uk", "com.au") is the two-letter country
// label. Multi-label generic suffixes yield their last label unchanged.
func CountryLabel(domain string) string {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	if suffix == "" {
		return ""
	}
	if idx := strings.LastIndex(suffix, "."); idx != -1 {
		suffix = suffix[idx+1:]
	}
	return suffix
}

// IsSubdomainOf reports whether query equals parent or is a dotted
// subdomain of it ("edition.cnn.com" is a subdomain of "cnn.com").
func IsSubdomainOf(query, parent string) bool {
	if query == parent {
		return true
	}
	return strings.HasSuffix(query, "."+parent)
}
