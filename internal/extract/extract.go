package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tildabook/internal/images"
	"tildabook/internal/urlutil"
)

const untitled = "Untitled"

// Tilda wraps every block in a .t-rec record under the #allrecords container.
// Records belonging to chrome rather than content carry one of these markers.
const (
	recordSelector   = ".t-rec"
	excludedMarkers  = ".t-menu, [class*='t228'], .t-cover, .t-form, header, nav"
	textSelector     = ".tn-atom, .t-text, .t-title, .t-heading, .t-descr, h1, h2, h3, h4, p, li, blockquote"
	buttonContainers = ".t-btn, .t-submit"
	fallbackStrip    = "nav, header, .t-menu, [class*='t228'], script, style"
)

// Result is one chapter's extraction output. An empty chapter is valid: a page
// with no heading and no content still extracts successfully with the
// placeholder title.
type Result struct {
	Title   string
	Content string
	Images  []string
}

// Chapter scans the page's content-bearing records, collects text blocks and
// platform-hosted images in reading order, dedupes the fragment stream and
// merges it. pageURL is the absolute URL the document was loaded from; image
// references are resolved against it.
func Chapter(doc *goquery.Document, pageURL string) Result {
	fragments, imgs := scanRecords(doc, pageURL)
	if len(fragments) == 0 {
		fragments, imgs = scanFallback(doc, pageURL)
	}
	fragments = Dedupe(fragments)

	return Result{
		Title:   pageTitle(doc),
		Content: strings.Join(fragments, "\n\n"),
		Images:  dedupeURLs(imgs),
	}
}

func scanRecords(doc *goquery.Document, pageURL string) ([]string, []string) {
	var fragments []string
	var imgs []string

	doc.Find(recordSelector).Each(func(_ int, record *goquery.Selection) {
		if record.Is(excludedMarkers) || record.Find(excludedMarkers).Length() > 0 {
			return
		}
		record.Find(textSelector + ", img").Each(func(_ int, s *goquery.Selection) {
			if s.Is("img") {
				if src, ok := imageSource(s, pageURL); ok {
					imgs = append(imgs, src)
					fragments = append(fragments, syntheticImgTag(src, s.AttrOr("alt", "")))
				}
				return
			}
			if s.Closest(buttonContainers).Length() > 0 {
				return
			}
			if markup, err := goquery.OuterHtml(s); err == nil {
				fragments = append(fragments, markup)
			}
		})
	})

	return fragments, imgs
}

// scanFallback handles pages with no recognizable records: take the whole
// content container, stripped of chrome, as a single fragment.
func scanFallback(doc *goquery.Document, pageURL string) ([]string, []string) {
	container := doc.Find("#allrecords").First()
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		return nil, nil
	}

	clone := container.Clone()
	clone.Find(fallbackStrip).Remove()

	var imgs []string
	clone.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := imageSource(s, pageURL); ok {
			imgs = append(imgs, src)
		}
	})

	markup, err := goquery.OuterHtml(clone)
	if err != nil || strings.TrimSpace(clone.Text()) == "" && len(imgs) == 0 {
		return nil, imgs
	}
	return []string{markup}, imgs
}

// imageSource returns the absolute asset URL of an img element, preferring the
// lazy-load attribute Tilda populates over the (often placeholder) src.
func imageSource(s *goquery.Selection, pageURL string) (string, bool) {
	src := strings.TrimSpace(s.AttrOr("data-original", ""))
	if src == "" {
		src = strings.TrimSpace(s.AttrOr("src", ""))
	}
	if src == "" {
		return "", false
	}
	abs, ok := urlutil.Resolve(src, pageURL)
	if !ok || !images.IsAssetURL(abs) {
		return "", false
	}
	return abs, true
}

func syntheticImgTag(src, alt string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(src), html.EscapeString(alt))
}

// pageTitle resolves the chapter title: first heading on the page, else the
// social metadata title, else a placeholder.
func pageTitle(doc *goquery.Document) string {
	if h := strings.TrimSpace(doc.Find("h1").First().Text()); h != "" {
		return h
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return untitled
}

func dedupeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
