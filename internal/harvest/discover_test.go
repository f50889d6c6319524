package harvest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fetcherFunc adapts a function to the Fetcher interface for tests.
type fetcherFunc func(ctx context.Context, url string) (FetchResult, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (FetchResult, error) {
	return f(ctx, url)
}

func noSitemap(_ context.Context, url string) (FetchResult, error) {
	return FetchResult{}, errors.New("not found")
}

func TestDiscover_SeedSetWithoutSitemap(t *testing.T) {
	t.Parallel()

	d := NewDiscoverer(fetcherFunc(noSitemap), time.Second, nil)
	urls := d.Discover(context.Background(), "https://acme.vc")

	require.Len(t, urls, 11)
	require.Contains(t, urls, "https://acme.vc")
	require.Contains(t, urls, "https://acme.vc/contact")
	require.Contains(t, urls, "https://acme.vc/about")
	require.Contains(t, urls, "https://acme.vc/team")
	require.Contains(t, urls, "https://acme.vc/about-us")
	require.Contains(t, urls, "https://acme.vc/contact-us")
	require.Contains(t, urls, "https://acme.vc/people")
	require.Contains(t, urls, "https://acme.vc/leadership")
	require.Contains(t, urls, "https://acme.vc/management")
	require.Contains(t, urls, "https://acme.vc/our-team")
	require.Contains(t, urls, "https://acme.vc/executives")
	require.IsIncreasing(t, urls)
}

func TestDiscover_SitemapWidensThemedURLs(t *testing.T) {
	t.Parallel()

	sitemap := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://acme.vc/en/Team/partners</loc></url>
  <url><loc>https://acme.vc/blog/2024-recap</loc></url>
  <url><loc>https://acme.vc/contact/offices</loc></url>
  <url><loc> </loc></url>
</urlset>`

	fetcher := fetcherFunc(func(_ context.Context, url string) (FetchResult, error) {
		require.Equal(t, "https://acme.vc/sitemap.xml", url)
		return FetchResult{URL: url, StatusCode: http.StatusOK, Body: []byte(sitemap)}, nil
	})

	d := NewDiscoverer(fetcher, time.Second, nil)
	urls := d.Discover(context.Background(), "https://acme.vc")

	// Matching against the themed paths is case-insensitive, but the original
	// loc casing is preserved in the result.
	require.Contains(t, urls, "https://acme.vc/en/Team/partners")
	require.Contains(t, urls, "https://acme.vc/contact/offices")
	require.NotContains(t, urls, "https://acme.vc/blog/2024-recap")
	require.Len(t, urls, 13)
}

func TestDiscover_DedupesSitemapAgainstSeeds(t *testing.T) {
	t.Parallel()

	sitemap := `<urlset><url><loc>https://acme.vc/team</loc></url></urlset>`
	fetcher := fetcherFunc(func(_ context.Context, url string) (FetchResult, error) {
		return FetchResult{URL: url, StatusCode: http.StatusOK, Body: []byte(sitemap)}, nil
	})

	d := NewDiscoverer(fetcher, time.Second, nil)
	urls := d.Discover(context.Background(), "https://acme.vc")
	require.Len(t, urls, 11)
}

func TestDiscover_BrokenSitemapIsSoft(t *testing.T) {
	t.Parallel()

	fetcher := fetcherFunc(func(_ context.Context, url string) (FetchResult, error) {
		return FetchResult{URL: url, StatusCode: http.StatusOK, Body: []byte("<urlset><loc")}, nil
	})

	d := NewDiscoverer(fetcher, time.Second, nil)
	urls := d.Discover(context.Background(), "https://acme.vc")
	require.Len(t, urls, 11)
}

func TestDiscover_SitemapProbeHonorsTimeout(t *testing.T) {
	t.Parallel()

	fetcher := fetcherFunc(func(ctx context.Context, _ string) (FetchResult, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		require.LessOrEqual(t, time.Until(deadline), 50*time.Millisecond)
		return FetchResult{}, ctx.Err()
	})

	d := NewDiscoverer(fetcher, 50*time.Millisecond, nil)
	urls := d.Discover(context.Background(), "https://acme.vc")
	require.Len(t, urls, 11)
}
