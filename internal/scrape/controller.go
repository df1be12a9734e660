package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"tildabook/internal/extract"
	"tildabook/internal/harvest"
	"tildabook/internal/images"
	"tildabook/internal/markdown"
	"tildabook/internal/urlutil"
)

type Mode string

const (
	ModeAuto Mode = "auto"
	ModeToc  Mode = "toc"
	ModeNav  Mode = "nav"
)

// DefaultTocThreshold is the link count above which a start page is treated
// as a table of contents. It is a heuristic: small TOCs will be misclassified
// as navigable chapter sequences, which is why Options.Mode can override it.
const DefaultTocThreshold = 20

// PageSource is the single browser tab driving the traversal. Loads are
// sequential; the handle's current document is replaced by each Load.
type PageSource interface {
	Load(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Sink receives the run's durable output: rendered chapters as they complete
// and the run metadata at finalization.
type Sink interface {
	WriteChapter(localID, markdown string) error
	WriteMetadata(meta RunMetadata) error
}

type Options struct {
	StartURL     string
	Mode         Mode          // auto selects by TOC link count
	TocThreshold int           // exclusive; 0 means DefaultTocThreshold
	Delay        time.Duration // base pause between chapter loads
	Jitter       time.Duration // upper bound of random extra pause
	Exclude      []string      // substring excludes applied to harvested links
	Include      []string      // glob includes; empty means everything
}

type Deps struct {
	Source   PageSource
	Resolver *images.Resolver
	Conv     *markdown.Converter
	Sink     Sink
	Log      *log.Logger
}

// Controller walks a site from a seed URL, classifies it as TOC-structured or
// a navigable chapter sequence, and scrapes every chapter it finds. One broken
// page never discards already-scraped chapters: chapter failures are recorded
// and traversal continues.
type Controller struct {
	opts     Options
	source   PageSource
	resolver *images.Resolver
	conv     *markdown.Converter
	sink     Sink
	log      *log.Logger
	state    *images.RunState
	include  []glob.Glob
}

func New(opts Options, deps Deps) (*Controller, error) {
	if urlutil.Origin(opts.StartURL) == "" {
		return nil, fmt.Errorf("invalid start URL: %q", opts.StartURL)
	}
	switch opts.Mode {
	case "", ModeAuto, ModeToc, ModeNav:
	default:
		return nil, fmt.Errorf("unknown traversal mode: %q", opts.Mode)
	}
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if opts.TocThreshold <= 0 {
		opts.TocThreshold = DefaultTocThreshold
	}

	include, err := compileIncludes(opts.Include)
	if err != nil {
		return nil, err
	}

	logger := deps.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Controller{
		opts:     opts,
		source:   deps.Source,
		resolver: deps.Resolver,
		conv:     deps.Conv,
		sink:     deps.Sink,
		log:      logger,
		state:    images.NewRunState(),
		include:  include,
	}, nil
}

// Run executes one scrape from seed URL to finalization. The returned error
// is non-nil only for setup-fatal conditions or cancellation; chapter and
// image failures are reported through the Summary after partial output has
// been written.
func (c *Controller) Run(ctx context.Context) (Summary, error) {
	meta := RunMetadata{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		StartURL:  c.opts.StartURL,
	}

	seedDoc, err := c.source.Load(ctx, c.opts.StartURL)
	if err != nil {
		return Summary{}, fmt.Errorf("load start page: %w", err)
	}

	links := filterLinks(harvest.TocLinks(seedDoc, c.opts.StartURL), c.opts.Exclude, c.include)

	mode := c.opts.Mode
	if mode == ModeAuto {
		if len(links) > c.opts.TocThreshold {
			mode = ModeToc
		} else {
			mode = ModeNav
		}
	}
	c.log.Info("traversal mode selected", "mode", mode, "toc_links", len(links))

	var failures []Failure
	switch mode {
	case ModeToc:
		failures, err = c.tocTraversal(ctx, links, &meta)
	default:
		failures, err = c.navTraversal(ctx, seedDoc, &meta)
	}
	if err != nil {
		return Summary{}, err
	}

	if err := c.sink.WriteMetadata(meta); err != nil {
		return Summary{}, fmt.Errorf("write run metadata: %w", err)
	}

	return Summary{
		Meta:         meta,
		Failures:     failures,
		FailedImages: c.state.FailedCount(),
	}, nil
}

// tocTraversal scrapes each harvested link in order. The loop position is the
// chapter's sequence index; a failed chapter consumes its index so the
// persisted numbering keeps traversal positions stable.
func (c *Controller) tocTraversal(ctx context.Context, links []string, meta *RunMetadata) ([]Failure, error) {
	var failures []Failure

	for i, link := range links {
		if i > 0 {
			if err := c.pause(ctx); err != nil {
				return failures, err
			}
		}

		doc, err := c.source.Load(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return failures, ctx.Err()
			}
			c.log.Warn("chapter load failed", "index", i, "url", link, "err", err)
			failures = append(failures, Failure{SequenceIndex: i, URL: link, Error: err.Error()})
			continue
		}

		rec, err := c.scrapeChapter(ctx, doc, link, i)
		if err != nil {
			c.log.Warn("chapter failed", "index", i, "url", link, "err", err)
			failures = append(failures, Failure{SequenceIndex: i, URL: link, Error: err.Error()})
			continue
		}
		meta.Chapters = append(meta.Chapters, rec)
	}

	return failures, nil
}

// navTraversal follows "next" links from the seed until none is found or a
// link repeats within this run. There is no iteration cap; the cycle guard is
// the only structural terminator.
func (c *Controller) navTraversal(ctx context.Context, seedDoc *goquery.Document, meta *RunMetadata) ([]Failure, error) {
	var failures []Failure

	visited := map[string]struct{}{c.opts.StartURL: {}}
	current := c.opts.StartURL
	doc := seedDoc
	index := 0

	for {
		rec, err := c.scrapeChapter(ctx, doc, current, index)
		if err != nil {
			c.log.Warn("chapter failed", "index", index, "url", current, "err", err)
			failures = append(failures, Failure{SequenceIndex: index, URL: current, Error: err.Error()})
		} else {
			meta.Chapters = append(meta.Chapters, rec)
		}
		index++

		next := harvest.NextLink(doc, current)
		if next == "" {
			c.log.Info("no next link, traversal complete", "chapters", len(meta.Chapters))
			return failures, nil
		}
		if _, seen := visited[next]; seen {
			c.log.Info("next link already visited, stopping", "url", next)
			return failures, nil
		}
		visited[next] = struct{}{}

		if err := c.pause(ctx); err != nil {
			return failures, err
		}

		doc, err = c.source.Load(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				return failures, ctx.Err()
			}
			// Without the page there is nothing left to harvest from.
			c.log.Warn("chapter load failed", "index", index, "url", next, "err", err)
			failures = append(failures, Failure{SequenceIndex: index, URL: next, Error: err.Error()})
			return failures, nil
		}
		current = next
	}
}

// scrapeChapter extracts one loaded page, resolves its images concurrently,
// rewrites resolved sources to local identifiers and persists the rendered
// Markdown.
func (c *Controller) scrapeChapter(ctx context.Context, doc *goquery.Document, pageURL string, index int) (ChapterRecord, error) {
	res := extract.Chapter(doc, pageURL)

	resolved := c.resolver.ResolveAll(ctx, res.Images, c.state)

	content, err := markdown.RewriteImageURLs(res.Content, resolved)
	if err != nil {
		return ChapterRecord{}, fmt.Errorf("rewrite image urls: %w", err)
	}
	md, err := c.conv.ChapterToMarkdown(res.Title, content)
	if err != nil {
		return ChapterRecord{}, fmt.Errorf("render markdown: %w", err)
	}

	localID := LocalID(index, res.Title)
	if err := c.sink.WriteChapter(localID, md); err != nil {
		return ChapterRecord{}, fmt.Errorf("write chapter: %w", err)
	}

	c.log.Info("scraped chapter", "index", index, "title", res.Title, "images", len(res.Images))
	return ChapterRecord{
		SequenceIndex: index,
		Title:         res.Title,
		SourceURL:     pageURL,
		LocalID:       localID,
	}, nil
}

// pause sleeps the base delay plus bounded random jitter between chapter
// loads.
func (c *Controller) pause(ctx context.Context) error {
	d := c.opts.Delay
	if c.opts.Jitter > 0 {
		d += rand.N(c.opts.Jitter)
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var errNoPattern = errors.New("empty include pattern")

func compileIncludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			return nil, errNoPattern
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
