package app

import (
	"errors"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"tildabook/internal/browser"
	"tildabook/internal/scrape"
)

const (
	DefaultTimeoutSeconds = 45
	DefaultOutputRoot     = "output"
	DefaultDelay          = 1500 * time.Millisecond
	DefaultJitter         = 1000 * time.Millisecond
)

type Options struct {
	StartURL     string
	Mode         scrape.Mode
	OutputDir    string
	Timeout      time.Duration
	UserAgent    string
	Headless     bool
	TocThreshold int
	Delay        time.Duration
	Jitter       time.Duration
	Exclude      []string
	Include      []string
	Yes          bool
	Verbose      bool
}

func normalizeOptions(opts Options) (Options, error) {
	if strings.TrimSpace(opts.StartURL) == "" {
		return opts, errors.New("url is required")
	}
	if opts.Mode == "" {
		opts.Mode = scrape.ModeAuto
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSeconds) * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = browser.DefaultUserAgent
	}
	if opts.OutputDir == "" {
		host := hostFromURL(opts.StartURL)
		if host == "" {
			host = "default"
		}
		opts.OutputDir = filepath.Join(DefaultOutputRoot, host)
	}
	return opts, nil
}

var hostStrip = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func hostFromURL(urlStr string) string {
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	host := strings.ReplaceAll(u.Hostname(), ".", "_")
	return hostStrip.ReplaceAllString(host, "")
}
