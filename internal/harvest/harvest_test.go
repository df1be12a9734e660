package harvest_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"tildabook/internal/harvest"
)

const tocURL = "https://books.example.com/contents"

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestTocLinks_FilterRules(t *testing.T) {
	doc := parse(t, `
<body>
<nav><a href="/chapter-0">In nav</a></nav>
<div class="t228__list"><a href="/chapter-menu">In menu block</a></div>
<div id="allrecords">
  <a href="#rec123">fragment only</a>
  <a href="/chapter-1#section">fragment inside</a>
  <a href="mailto:author@example.com">mail</a>
  <a href="tel:+123456">phone</a>
  <a href="https://facebook.com/book">social</a>
  <a href="https://t.me/bookchannel">messenger</a>
  <a href="https://other.example.net/chapter">offsite</a>
  <a href="/">site root</a>
  <a href="/contents">this page</a>
  <a href="/contents/">this page trailing slash</a>
  <a href="/chapter-1">one</a>
  <a href="/chapter-2">two</a>
  <a href="/chapter-1">one again</a>
  <a href="chapter-3">relative three</a>
</div>
</body>`)

	got := harvest.TocLinks(doc, tocURL)
	want := []string{
		"https://books.example.com/chapter-1",
		"https://books.example.com/chapter-2",
		"https://books.example.com/chapter-3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TocLinks = %v, want %v", got, want)
	}
}

func TestTocLinks_SubdomainIsNotSameSite(t *testing.T) {
	doc := parse(t, `<body><a href="https://blog.books.example.com/post">sub</a></body>`)
	if got := harvest.TocLinks(doc, tocURL); len(got) != 0 {
		t.Fatalf("TocLinks = %v, want none", got)
	}
}

func TestNextLink_Vocabulary(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"english",
			`<a href="/chapter-2">Next chapter</a>`,
			"https://books.example.com/chapter-2",
		},
		{
			"russian",
			`<a href="/glava-2">Следующая глава</a>`,
			"https://books.example.com/glava-2",
		},
		{
			"arrow glyph",
			`<a href="/chapter-2">→</a>`,
			"https://books.example.com/chapter-2",
		},
		{
			"case insensitive",
			`<a href="/chapter-2">NEXT</a>`,
			"https://books.example.com/chapter-2",
		},
		{
			"first match wins",
			`<a href="/a">Next</a><a href="/b">Next</a>`,
			"https://books.example.com/a",
		},
		{
			"no match",
			`<a href="/chapter-2">Previous</a><a href="/about">About</a>`,
			"",
		},
		{
			"unresolvable href skipped",
			`<a href="http://">Next</a><a href="/chapter-2">next one</a>`,
			"https://books.example.com/chapter-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, "<body>"+tt.html+"</body>")
			if got := harvest.NextLink(doc, "https://books.example.com/chapter-1"); got != tt.want {
				t.Fatalf("NextLink = %q, want %q", got, tt.want)
			}
		})
	}
}
