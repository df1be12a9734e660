package urlutil_test

import (
	"testing"

	"tildabook/internal/urlutil"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		href string
		base string
		want string
		ok   bool
	}{
		{"root relative", "/page", "https://example.com/dir/x", "https://example.com/page", true},
		{"document relative", "page.html", "https://example.com/dir/index.html", "https://example.com/dir/page.html", true},
		{"protocol relative", "//other.com/p", "https://example.com", "https://other.com/p", true},
		{"absolute", "https://example.com/ch/1", "https://example.com", "https://example.com/ch/1", true},
		{"scheme without host", "http://", "https://example.com", "", false},
		{"query only", "?page=2", "https://example.com/book", "https://example.com/book?page=2", true},
		{"fragment only", "#part", "https://example.com/book", "https://example.com/book#part", true},
		{"empty keeps base path", "", "https://example.com/dir/x", "https://example.com/dir/x", true},
		{"non http scheme", "ftp://example.com/f", "https://example.com", "", false},
		{"double slash path preserved", "https://example.com//a//b", "https://example.com", "https://example.com//a//b", true},
		{"invalid base", "/page", "not a url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := urlutil.Resolve(tt.href, tt.base)
			if ok != tt.ok {
				t.Fatalf("Resolve(%q, %q) ok = %v, want %v", tt.href, tt.base, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("Resolve(%q, %q) = %q, want %q", tt.href, tt.base, got, tt.want)
			}
		})
	}
}

func TestSameHost(t *testing.T) {
	if !urlutil.SameHost("https://example.com/ch/1", "example.com") {
		t.Fatal("expected same host")
	}
	if urlutil.SameHost("https://blog.example.com/ch/1", "example.com") {
		t.Fatal("subdomain must not match")
	}
	if urlutil.SameHost("https://other.com/", "example.com") {
		t.Fatal("different host must not match")
	}
}

func TestOrigin(t *testing.T) {
	if got := urlutil.Origin("https://example.com:8443/a/b?q=1"); got != "https://example.com:8443" {
		t.Fatalf("Origin = %q", got)
	}
	if got := urlutil.Origin("not a url"); got != "" {
		t.Fatalf("Origin of junk = %q, want empty", got)
	}
}
