package markdown

import (
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

type Converter struct {
	md *htmltomd.Converter
}

func NewConverter() *Converter {
	conv := htmltomd.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	// Images get their own block so they survive inside merged fragment HTML.
	conv.AddRules(imageRule())

	return &Converter{md: conv}
}

// ChapterToMarkdown renders one chapter: title as the top-level heading,
// converted body below. An empty body yields just the heading.
func (c *Converter) ChapterToMarkdown(title, contentHTML string) (string, error) {
	headingLine := "# " + strings.TrimSpace(title)

	body, err := c.md.ConvertString(contentHTML)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return headingLine + "\n", nil
	}
	return headingLine + "\n\n" + strings.TrimSpace(body) + "\n", nil
}

func imageRule() htmltomd.Rule {
	return htmltomd.Rule{
		Filter: []string{"img"},
		Replacement: func(_ string, selec *goquery.Selection, _ *htmltomd.Options) *string {
			if selec == nil {
				empty := ""
				return &empty
			}
			src, _ := selec.Attr("src")
			if strings.TrimSpace(src) == "" {
				empty := ""
				return &empty
			}
			alt, _ := selec.Attr("alt")
			out := "\n\n![" + strings.TrimSpace(alt) + "](" + strings.TrimSpace(src) + ")\n\n"
			return &out
		},
	}
}

// RewriteImageURLs replaces the src of every image that resolved locally with
// its local identifier. Images missing from the mapping keep their remote URL.
func RewriteImageURLs(contentHTML string, localBySource map[string]string) (string, error) {
	if len(localBySource) == 0 {
		return contentHTML, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return "", err
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		if local, resolved := localBySource[src]; resolved {
			s.SetAttr("src", local)
		}
	})

	return doc.Find("body").Html()
}
