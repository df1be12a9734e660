package scrape_test

import (
	"strings"
	"testing"

	"tildabook/internal/scrape"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chapter One", "chapter-one"},
		{"  The    Long — Road  ", "the-long-road"},
		{"Глава 1", "1"},
		{"!!!", "chapter"},
		{"", "chapter"},
	}
	for _, tt := range tests {
		if got := scrape.Slugify(tt.in); got != tt.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify_LengthBounded(t *testing.T) {
	got := scrape.Slugify(strings.Repeat("verylongword ", 20))
	if len(got) > 48 {
		t.Fatalf("slug too long: %d chars", len(got))
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Fatalf("slug has dangling dash: %q", got)
	}
}

func TestLocalID(t *testing.T) {
	if got := scrape.LocalID(7, "Chapter Seven"); got != "007-chapter-seven" {
		t.Fatalf("LocalID = %q", got)
	}
	if got := scrape.LocalID(0, ""); got != "000-chapter" {
		t.Fatalf("LocalID = %q", got)
	}
}
