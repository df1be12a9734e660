package images_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"tildabook/internal/images"
)

func TestTransformPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"resize placeholder",
			"https://thb.tildacdn.com/tild1234-abcd/-/resize/20x/photo.jpg",
			"https://static.tildacdn.com/tild1234-abcd/photo.jpg",
		},
		{
			"empty placeholder",
			"https://thb.tildacdn.com/tild9999-ffff/-/empty/cover.png",
			"https://static.tildacdn.com/tild9999-ffff/cover.png",
		},
		{
			"already static",
			"https://static.tildacdn.com/tild1234-abcd/photo.jpg",
			"https://static.tildacdn.com/tild1234-abcd/photo.jpg",
		},
		{
			"thumbnail host without marker",
			"https://thb.tildacdn.com/tild1234-abcd/photo.jpg",
			"https://thb.tildacdn.com/tild1234-abcd/photo.jpg",
		},
		{
			"foreign host",
			"https://cdn.example.com/-/resize/photo.jpg",
			"https://cdn.example.com/-/resize/photo.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := images.TransformPlaceholder(tt.in); got != tt.want {
				t.Fatalf("TransformPlaceholder(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsAssetURL(t *testing.T) {
	for _, u := range []string{
		"https://static.tildacdn.com/tild0001/a.jpg",
		"https://thb.tildacdn.com/tild0001/-/resize/a.jpg",
		"https://optim.tildacdn.pub/tild0001/a.jpg",
	} {
		if !images.IsAssetURL(u) {
			t.Fatalf("expected asset URL: %s", u)
		}
	}
	if images.IsAssetURL("https://cdn.example.com/a.jpg") {
		t.Fatal("foreign host must not be an asset URL")
	}
}

type fakeFetcher struct {
	mu      sync.Mutex
	fail    map[string]bool
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, rawURL)
	if f.fail[rawURL] {
		return nil, "", errors.New("status 404")
	}
	return []byte("bytes"), "image/jpeg", nil
}

type fakeSink struct {
	mu      sync.Mutex
	failAll bool
	indices []int
}

func (s *fakeSink) Materialize(index int, _ string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return "", errors.New("disk full")
	}
	s.indices = append(s.indices, index)
	return fmt.Sprintf("images/img-%04d.jpg", index), nil
}

const placeholder = "https://thb.tildacdn.com/tild0001/-/resize/20x/a.jpg"
const transformed = "https://static.tildacdn.com/tild0001/a.jpg"

func TestResolve_FallbackToOriginal(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{transformed: true}}
	state := images.NewRunState()
	r := images.NewResolver(fetcher, &fakeSink{})

	local := r.Resolve(context.Background(), placeholder, 0, state)
	if local == "" {
		t.Fatal("expected successful fallback resolution")
	}
	if state.FailedCount() != 0 {
		t.Fatalf("failed count = %d, want 0", state.FailedCount())
	}
	if len(fetcher.fetched) != 2 || fetcher.fetched[0] != transformed || fetcher.fetched[1] != placeholder {
		t.Fatalf("fetch order = %v", fetcher.fetched)
	}
}

func TestResolve_BothFailCountsOnce(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{transformed: true, placeholder: true}}
	state := images.NewRunState()
	r := images.NewResolver(fetcher, &fakeSink{})

	local := r.Resolve(context.Background(), placeholder, 0, state)
	if local != "" {
		t.Fatalf("expected empty identifier, got %q", local)
	}
	if state.FailedCount() != 1 {
		t.Fatalf("failed count = %d, want 1", state.FailedCount())
	}
}

func TestResolve_NoFallbackWhenUntransformed(t *testing.T) {
	const static = "https://static.tildacdn.com/tild0002/b.jpg"
	fetcher := &fakeFetcher{fail: map[string]bool{static: true}}
	state := images.NewRunState()
	r := images.NewResolver(fetcher, &fakeSink{})

	if local := r.Resolve(context.Background(), static, 0, state); local != "" {
		t.Fatalf("expected failure, got %q", local)
	}
	if len(fetcher.fetched) != 1 {
		t.Fatalf("expected a single fetch attempt, got %v", fetcher.fetched)
	}
}

func TestResolve_MaterializeFailureIsSoft(t *testing.T) {
	state := images.NewRunState()
	r := images.NewResolver(&fakeFetcher{}, &fakeSink{failAll: true})

	if local := r.Resolve(context.Background(), transformed, 0, state); local != "" {
		t.Fatalf("expected failure, got %q", local)
	}
	if state.FailedCount() != 1 {
		t.Fatalf("failed count = %d, want 1", state.FailedCount())
	}
}

func TestResolveAll_IndicesUniqueAndContiguous(t *testing.T) {
	state := images.NewRunState()
	// Consume a few indices first so the batch starts at an offset.
	state.NextIndex()
	state.NextIndex()

	fetcher := &fakeFetcher{fail: map[string]bool{}}
	sink := &fakeSink{}
	r := images.NewResolver(fetcher, sink)

	var urls []string
	for i := 0; i < 8; i++ {
		urls = append(urls, fmt.Sprintf("https://static.tildacdn.com/tild%04d/x.jpg", i))
	}
	// One failing member must still consume its index.
	fetcher.fail[urls[3]] = true

	resolved := r.ResolveAll(context.Background(), urls, state)
	if len(resolved) != 7 {
		t.Fatalf("resolved %d images, want 7", len(resolved))
	}

	sort.Ints(sink.indices)
	seen := map[int]bool{}
	for _, idx := range sink.indices {
		if seen[idx] {
			t.Fatalf("index %d assigned twice", idx)
		}
		seen[idx] = true
		if idx < 2 || idx > 9 {
			t.Fatalf("index %d outside expected range [2,9]", idx)
		}
	}
	if state.FailedCount() != 1 {
		t.Fatalf("failed count = %d, want 1", state.FailedCount())
	}
}
