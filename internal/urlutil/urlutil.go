package urlutil

import (
	"net/url"
	"strings"
)

// Resolve turns an href found on a page into an absolute URL against base.
// The boolean is false for anything malformed; callers treat that as a skip
// condition, never a fatal error. An empty href resolves to the base URL
// itself, including its path.
func Resolve(href, base string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return "", false
	}

	href = strings.TrimSpace(href)
	if href == "" {
		return baseURL.String(), true
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	if ref.IsAbs() {
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return "", false
		}
		if ref.Host == "" {
			return "", false
		}
		return ref.String(), true
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return "", false
	}
	return resolved.String(), true
}

// SameHost reports whether rawURL points at exactly host. Subdomains do not
// match.
func SameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Hostname() == host
}

// Host returns the hostname of rawURL, or "" if it cannot be parsed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Origin returns "scheme://host[:port]" for rawURL, or "" if rawURL is not an
// absolute URL.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Path returns the path component of rawURL.
func Path(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}
