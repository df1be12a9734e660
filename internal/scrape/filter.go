package scrape

import (
	"strings"

	"github.com/gobwas/glob"
)

// filterLinks applies the operator's allow/deny filters to harvested links:
// any link containing an exclude substring is dropped; when include globs are
// given, a link must match at least one to survive.
func filterLinks(links []string, exclude []string, include []glob.Glob) []string {
	out := make([]string, 0, len(links))
	for _, link := range links {
		if containsAny(link, exclude) {
			continue
		}
		if len(include) > 0 && !matchesAny(link, include) {
			continue
		}
		out = append(out, link)
	}
	return out
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func matchesAny(s string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
