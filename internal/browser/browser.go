package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// DefaultUserAgent is a realistic desktop browser identity; Tilda sites serve
// degraded markup to obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

const (
	defaultTimeout = 45 * time.Second
	viewportWidth  = 1280
	viewportHeight = 800
)

type Options struct {
	Headless  bool
	Timeout   time.Duration
	UserAgent string
}

// Session drives a single browser tab for the whole traversal. Chapter loads
// are deliberately sequential through the one page; only a fresh Load replaces
// the tab's current document.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	timeout time.Duration
}

func NewSession(opts Options) (*Session, error) {
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	if err := playwright.Install(&playwright.RunOptions{}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  viewportWidth,
			Height: viewportHeight,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, err
	}

	return &Session{pw: pw, browser: browser, page: page, timeout: opts.Timeout}, nil
}

// Load navigates the session's tab to rawURL, waits for the network to go
// idle so Tilda's block scripts have rendered, and parses the resulting DOM.
func (s *Session) Load(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.page.Goto(rawURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("page load timed out after %s: %s", s.timeout, rawURL)
		}
		return nil, fmt.Errorf("load %s: %w", rawURL, err)
	}

	html, err := s.page.Content()
	if err != nil {
		return nil, fmt.Errorf("read page content: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Close releases the page, browser and driver in order. Safe to call after a
// partial setup failure.
func (s *Session) Close() error {
	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}
