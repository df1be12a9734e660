package harvest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tildabook/internal/urlutil"
)

// Link regions that never contain chapter links.
const navigationMarkers = "nav, header, .t-menu, [class*='t228']"

// Social and messaging hosts sometimes linked from book sites; never chapters.
var excludedDomains = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"vk.com",
	"t.me",
	"telegram.me",
	"wa.me",
	"whatsapp.com",
	"youtube.com",
	"linkedin.com",
	"pinterest.com",
}

// Anchor-text vocabulary that marks a "next chapter" link. Matched
// case-insensitively as a substring.
var nextTerms = []string{
	"next",
	"continue",
	"далее",
	"следующая",
	"вперед",
	"weiter",
	"suivant",
	"siguiente",
	"次へ",
	"→",
	">>",
}

// TocLinks collects same-site content links from a table-of-contents page, in
// first-seen order, deduplicated by exact resolved URL. Fragment links, mail
// and phone schemes, social domains, the site root, the page itself and
// anything inside navigation chrome are all skipped.
func TocLinks(doc *goquery.Document, pageURL string) []string {
	baseHost := urlutil.Host(pageURL)
	basePath := normalizePath(urlutil.Path(pageURL))

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !acceptableHref(href) {
			return
		}
		if s.Closest(navigationMarkers).Length() > 0 {
			return
		}

		resolved, ok := urlutil.Resolve(href, pageURL)
		if !ok {
			return
		}
		if !urlutil.SameHost(resolved, baseHost) {
			return
		}
		if isExcludedDomain(urlutil.Host(resolved)) {
			return
		}

		path := normalizePath(urlutil.Path(resolved))
		if path == "" || path == basePath {
			return
		}

		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links
}

// NextLink returns the resolved href of the first link whose anchor text
// matches the next-chapter vocabulary, or "" when the page has none.
func NextLink(doc *goquery.Document, pageURL string) string {
	var next string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if text == "" || !matchesNextTerm(text) {
			return true
		}
		resolved, ok := urlutil.Resolve(s.AttrOr("href", ""), pageURL)
		if !ok {
			return true
		}
		next = resolved
		return false
	})
	return next
}

func acceptableHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	// Tilda uses in-page anchors for its own block navigation; a fragment
	// anywhere in the href means this is not a chapter boundary.
	if strings.Contains(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "javascript:") {
		return false
	}
	return true
}

func isExcludedDomain(host string) bool {
	for _, d := range excludedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func matchesNextTerm(text string) bool {
	for _, term := range nextTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	path = strings.TrimSuffix(path, "/")
	return path
}
