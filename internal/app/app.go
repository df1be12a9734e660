package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"tildabook/internal/browser"
	"tildabook/internal/fetch"
	"tildabook/internal/images"
	"tildabook/internal/markdown"
	"tildabook/internal/output"
	"tildabook/internal/report"
	"tildabook/internal/scrape"
)

// ErrChaptersFailed signals a run that completed and wrote partial output but
// lost one or more chapters. The process exit status reflects it; the output
// on disk is already durable by the time it is returned.
var ErrChaptersFailed = errors.New("one or more chapters failed")

func Run(ctx context.Context, opts Options) error {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if !opts.Yes {
		ok, err := confirmRun(opts)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("run cancelled")
			return nil
		}
	}

	writer, err := output.NewWriter(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	logger.Info("starting browser", "headless", opts.Headless)
	session, err := browser.NewSession(browser.Options{
		Headless:  opts.Headless,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		_ = session.Close()
	}()

	resolver := images.NewResolver(fetch.NewClient(opts.Timeout, opts.UserAgent), writer)

	ctrl, err := scrape.New(scrape.Options{
		StartURL:     opts.StartURL,
		Mode:         opts.Mode,
		TocThreshold: opts.TocThreshold,
		Delay:        opts.Delay,
		Jitter:       opts.Jitter,
		Exclude:      opts.Exclude,
		Include:      opts.Include,
	}, scrape.Deps{
		Source:   session,
		Resolver: resolver,
		Conv:     markdown.NewConverter(),
		Sink:     writer,
		Log:      logger,
	})
	if err != nil {
		return err
	}

	sum, err := ctrl.Run(ctx)
	if err != nil {
		return err
	}

	rep := report.Build(sum, writer.Dir())
	rep.Log(logger)
	if rep.HasFailures() {
		return ErrChaptersFailed
	}
	return nil
}
