package images

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Tilda serves two kinds of image URLs: real assets on the static CDN, and
// low-resolution thumbnail placeholders on thb.tildacdn.com whose path carries
// a "/-/" processing marker (resize, empty and friends). The placeholder form
// must be rewritten to the static host to retrieve the full asset.
const (
	placeholderHost = "thb.tildacdn.com"
	staticHost      = "static.tildacdn.com"
	processingMark  = "/-/"
)

var assetHosts = []string{staticHost, placeholderHost}

// IsAssetURL reports whether rawURL points at one of Tilda's asset hosts.
func IsAssetURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, h := range assetHosts {
		if host == h {
			return true
		}
	}
	return strings.HasSuffix(host, ".tildacdn.pub")
}

// TransformPlaceholder rewrites a thumbnail placeholder URL to its real asset
// URL on the static host, keeping the unique asset segment and the filename.
// URLs that are not placeholders come back unchanged.
func TransformPlaceholder(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Hostname() != placeholderHost || !strings.Contains(u.Path, processingMark) {
		return rawURL
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) < 2 {
		return rawURL
	}
	asset := segs[0]
	file := segs[len(segs)-1]
	if asset == "" || file == "" {
		return rawURL
	}
	return "https://" + staticHost + "/" + asset + "/" + file
}

// Fetcher retrieves raw bytes for a URL. The second return value is the
// response content type.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Materializer persists fetched image bytes under a stable, index-derived
// name and returns the local identifier to reference them by.
type Materializer interface {
	Materialize(index int, contentType string, data []byte) (string, error)
}

type Resolver struct {
	fetcher Fetcher
	sink    Materializer
}

func NewResolver(fetcher Fetcher, sink Materializer) *Resolver {
	return &Resolver{fetcher: fetcher, sink: sink}
}

// Resolve materializes one remote image locally. The placeholder transform is
// applied first; if the transformed fetch fails and the transform actually
// changed the URL, the original is tried once as a fallback. Failure is always
// soft: the run state's failure count is bumped and "" is returned.
func (r *Resolver) Resolve(ctx context.Context, remoteURL string, index int, state *RunState) string {
	target := TransformPlaceholder(remoteURL)

	data, contentType, err := r.fetcher.Fetch(ctx, target)
	if err != nil && target != remoteURL {
		data, contentType, err = r.fetcher.Fetch(ctx, remoteURL)
	}
	if err != nil {
		state.RecordFailure()
		return ""
	}

	localID, err := r.sink.Materialize(index, contentType, data)
	if err != nil {
		state.RecordFailure()
		return ""
	}
	return localID
}

// ResolveAll fans out all of one chapter's images concurrently and waits for
// the whole batch. Indices are taken from the run state synchronously, before
// any goroutine starts, so they stay unique regardless of fetch outcomes. The
// returned map holds remote URL -> local identifier for the successes only.
func (r *Resolver) ResolveAll(ctx context.Context, remoteURLs []string, state *RunState) map[string]string {
	locals := make([]string, len(remoteURLs))

	g, gctx := errgroup.WithContext(ctx)
	for i, remote := range remoteURLs {
		index := state.NextIndex()
		g.Go(func() error {
			locals[i] = r.Resolve(gctx, remote, index, state)
			return nil
		})
	}
	_ = g.Wait()

	resolved := make(map[string]string, len(remoteURLs))
	for i, remote := range remoteURLs {
		if locals[i] != "" {
			resolved[remote] = locals[i]
		}
	}
	return resolved
}
