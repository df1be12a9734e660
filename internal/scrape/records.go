package scrape

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxSlugLen = 48

// ChapterRecord is one successfully scraped chapter. Records are created only
// on successful extraction and are immutable afterwards; failed chapters
// produce a Failure instead.
type ChapterRecord struct {
	SequenceIndex int    `json:"sequence_index"`
	Title         string `json:"title"`
	SourceURL     string `json:"source_url"`
	LocalID       string `json:"local_id"`
}

// Failure records one chapter that could not be loaded or extracted. The
// sequence index it consumed is kept so the gap in the persisted chapter
// numbering stays explainable.
type Failure struct {
	SequenceIndex int    `json:"sequence_index"`
	URL           string `json:"url"`
	Error         string `json:"error"`
}

// RunMetadata aggregates one scrape invocation. Chapter order is traversal
// order.
type RunMetadata struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	StartURL  string          `json:"start_url"`
	Chapters  []ChapterRecord `json:"chapters"`
}

// Summary is what the controller hands back to the operator at run end.
type Summary struct {
	Meta         RunMetadata
	Failures     []Failure
	FailedImages int
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify folds a chapter title into a filesystem-safe slug: lowercased,
// non-alphanumerics collapsed to single dashes, length-bounded.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "chapter"
	}
	return slug
}

// LocalID derives the persistence key for a chapter: zero-padded sequence
// prefix plus title slug.
func LocalID(sequenceIndex int, title string) string {
	return fmt.Sprintf("%03d-%s", sequenceIndex, Slugify(title))
}
