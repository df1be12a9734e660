package cli

import (
	"flag"
	"time"

	"tildabook/internal/app"
	"tildabook/internal/config"
	"tildabook/internal/scrape"
)

type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

// ParseArgs turns command-line arguments, merged over an optional config
// file, into run options. The second return value is true when the operator
// asked for a starter config file instead of a run.
func ParseArgs(args []string) (app.Options, bool, error) {
	parsed, err := parseFlags(args)
	if err != nil {
		return app.Options{}, false, ExitError{Code: 2, Err: err}
	}
	if parsed.initConfig {
		return app.Options{}, true, nil
	}

	cfg, err := loadConfig(parsed.configPath)
	if err != nil {
		return app.Options{}, false, err
	}
	applyConfig(&parsed, cfg)

	return buildOptions(parsed), false, nil
}

type parsedFlags struct {
	urlStr       string
	configPath   string
	initConfig   bool
	yes          bool
	verbose      bool
	mode         stringFlag
	outputDir    stringFlag
	timeout      intFlag
	userAgent    stringFlag
	headless     boolFlag
	tocThreshold intFlag
	delayMs      intFlag
	jitterMs     intFlag
	exclude      stringListFlag
	include      stringListFlag
}

func parseFlags(args []string) (parsedFlags, error) {
	fs := flag.NewFlagSet("tildabook", flag.ContinueOnError)
	parsed := parsedFlags{}

	fs.StringVar(&parsed.urlStr, "url", "", "Seed URL: table of contents or first chapter")
	fs.StringVar(&parsed.configPath, "config", "", "Path to YAML config file")
	fs.BoolVar(&parsed.initConfig, "init-config", false, "Write a commented starter config and exit")
	fs.BoolVar(&parsed.yes, "yes", false, "Skip confirmation prompt")
	fs.BoolVar(&parsed.verbose, "verbose", false, "Enable debug logging")
	parsed.mode.Value = string(scrape.ModeAuto)
	fs.Var(&parsed.mode, "mode", "Traversal mode: auto|toc|nav")
	fs.Var(&parsed.outputDir, "output-dir", "Output directory (default: output/<host>)")
	parsed.timeout.Value = app.DefaultTimeoutSeconds
	fs.Var(&parsed.timeout, "timeout", "Page load timeout in seconds")
	fs.Var(&parsed.userAgent, "user-agent", "User-Agent presented to the site")
	parsed.headless.Value = true
	fs.Var(&parsed.headless, "headless", "Run the browser headless")
	parsed.tocThreshold.Value = scrape.DefaultTocThreshold
	fs.Var(&parsed.tocThreshold, "toc-threshold", "Link count above which the seed page is treated as a TOC")
	parsed.delayMs.Value = int(app.DefaultDelay / time.Millisecond)
	fs.Var(&parsed.delayMs, "delay", "Base pause between chapter loads, in milliseconds")
	parsed.jitterMs.Value = int(app.DefaultJitter / time.Millisecond)
	fs.Var(&parsed.jitterMs, "jitter", "Upper bound of random extra pause, in milliseconds")
	fs.Var(&parsed.exclude, "exclude", "Comma-separated substrings; matching links are skipped")
	fs.Var(&parsed.include, "include", "Comma-separated globs; when set, only matching links are kept")

	if err := fs.Parse(args); err != nil {
		return parsed, err
	}
	return parsed, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Config{}, nil
	}
	return config.Load(path)
}

// applyConfig fills every flag the operator left untouched from the config
// file.
func applyConfig(parsed *parsedFlags, cfg config.Config) {
	if parsed.urlStr == "" && cfg.StartURL != "" {
		parsed.urlStr = cfg.StartURL
	}
	if !parsed.mode.WasSet && cfg.Mode != "" {
		parsed.mode.Value = cfg.Mode
	}
	if !parsed.outputDir.WasSet && cfg.OutputDir != "" {
		parsed.outputDir.Value = cfg.OutputDir
	}
	if !parsed.timeout.WasSet && cfg.TimeoutSeconds > 0 {
		parsed.timeout.Value = cfg.TimeoutSeconds
	}
	if !parsed.userAgent.WasSet && cfg.UserAgent != "" {
		parsed.userAgent.Value = cfg.UserAgent
	}
	if !parsed.headless.WasSet && cfg.Headless != nil {
		parsed.headless.Value = *cfg.Headless
	}
	if !parsed.tocThreshold.WasSet && cfg.TocThreshold > 0 {
		parsed.tocThreshold.Value = cfg.TocThreshold
	}
	if !parsed.delayMs.WasSet && cfg.DelayMs > 0 {
		parsed.delayMs.Value = cfg.DelayMs
	}
	if !parsed.jitterMs.WasSet && cfg.JitterMs > 0 {
		parsed.jitterMs.Value = cfg.JitterMs
	}
	if !parsed.exclude.WasSet && len(cfg.Exclude) > 0 {
		parsed.exclude.Values = cfg.Exclude
	}
	if !parsed.include.WasSet && len(cfg.Include) > 0 {
		parsed.include.Values = cfg.Include
	}
}

func buildOptions(parsed parsedFlags) app.Options {
	return app.Options{
		StartURL:     parsed.urlStr,
		Mode:         scrape.Mode(parsed.mode.Value),
		OutputDir:    parsed.outputDir.Value,
		Timeout:      time.Duration(parsed.timeout.Value) * time.Second,
		UserAgent:    parsed.userAgent.Value,
		Headless:     parsed.headless.Value,
		TocThreshold: parsed.tocThreshold.Value,
		Delay:        time.Duration(parsed.delayMs.Value) * time.Millisecond,
		Jitter:       time.Duration(parsed.jitterMs.Value) * time.Millisecond,
		Exclude:      parsed.exclude.Values,
		Include:      parsed.include.Values,
		Yes:          parsed.yes,
		Verbose:      parsed.verbose,
	}
}
