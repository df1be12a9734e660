package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Dedupe removes fragments that duplicate an earlier one, keeping first
// occurrences in input order. Tilda renders the same block once per responsive
// breakpoint with different wrapper markup, so the key is the fragment's image
// source when it carries an image and its stripped text content otherwise —
// class structure differs between variants but the rendered content does not.
func Dedupe(fragments []string) []string {
	seen := make(map[string]struct{}, len(fragments))
	out := make([]string, 0, len(fragments))

	for _, fragment := range fragments {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		key := dedupeKey(fragment)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, fragment)
	}
	return out
}

func dedupeKey(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	if src, ok := doc.Find("img").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	return strings.TrimSpace(doc.Text())
}
