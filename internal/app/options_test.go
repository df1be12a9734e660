package app

import (
	"path/filepath"
	"testing"
	"time"

	"tildabook/internal/scrape"
)

func TestNormalizeOptions_RequiresURL(t *testing.T) {
	if _, err := normalizeOptions(Options{}); err == nil {
		t.Fatal("expected error for missing URL")
	}
}

func TestNormalizeOptions_Defaults(t *testing.T) {
	opts, err := normalizeOptions(Options{StartURL: "https://books.example.com/contents"})
	if err != nil {
		t.Fatalf("normalizeOptions: %v", err)
	}
	if opts.Mode != scrape.ModeAuto {
		t.Fatalf("Mode = %q", opts.Mode)
	}
	if opts.Timeout != 45*time.Second {
		t.Fatalf("Timeout = %s", opts.Timeout)
	}
	if opts.UserAgent == "" {
		t.Fatal("UserAgent must default")
	}
	want := filepath.Join("output", "books_example_com")
	if opts.OutputDir != want {
		t.Fatalf("OutputDir = %q, want %q", opts.OutputDir, want)
	}
}

func TestNormalizeOptions_KeepsExplicitValues(t *testing.T) {
	opts, err := normalizeOptions(Options{
		StartURL:  "https://books.example.com",
		OutputDir: "elsewhere",
		Timeout:   10 * time.Second,
	})
	if err != nil {
		t.Fatalf("normalizeOptions: %v", err)
	}
	if opts.OutputDir != "elsewhere" || opts.Timeout != 10*time.Second {
		t.Fatalf("opts = %+v", opts)
	}
}
