package harvest

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"
)

// themedPaths are the fixed sub-pages most likely to carry contact emails.
var themedPaths = []string{
	"/contact",
	"/about",
	"/team",
	"/about-us",
	"/contact-us",
	"/people",
	"/leadership",
	"/management",
	"/our-team",
	"/executives",
}

// Discoverer builds the bounded set of candidate pages for one site: the
// base origin, the fixed themed paths, and any sitemap-declared URL whose
// path mentions one of the themes.
type Discoverer struct {
	fetcher        Fetcher
	sitemapTimeout time.Duration
	logger         *zap.Logger
}

// NewDiscoverer constructs a Discoverer. A zero sitemapTimeout disables the
// sitemap probe's deadline, which is never what production wants, so callers
// pass the configured value.
func NewDiscoverer(fetcher Fetcher, sitemapTimeout time.Duration, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		fetcher:        fetcher,
		sitemapTimeout: sitemapTimeout,
		logger:         logger,
	}
}

// Discover returns the candidate URL set for a normalized base URL. Sitemap
// absence or breakage is expected and only widens nothing; the deterministic
// seed set is always returned.
func (d *Discoverer) Discover(ctx context.Context, base string) []string {
	seen := make(map[string]struct{}, len(themedPaths)+1)
	seen[base] = struct{}{}
	for _, path := range themedPaths {
		seen[base+path] = struct{}{}
	}

	for _, loc := range d.sitemapURLs(ctx, base) {
		seen[loc] = struct{}{}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// sitemapURLs probes {base}/sitemap.xml and returns every <loc> entry whose
// lowercased form contains a themed path. All failures are soft.
func (d *Discoverer) sitemapURLs(ctx context.Context, base string) []string {
	if d.sitemapTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sitemapTimeout)
		defer cancel()
	}

	res, err := d.fetcher.Fetch(ctx, base+"/sitemap.xml")
	if err != nil {
		d.logger.Debug("sitemap probe failed", zap.String("base", base), zap.Error(err))
		return nil
	}

	doc, err := xmlquery.Parse(bytes.NewReader(res.Body))
	if err != nil {
		d.logger.Debug("sitemap parse failed", zap.String("base", base), zap.Error(err))
		return nil
	}

	var out []string
	for _, node := range xmlquery.Find(doc, "//loc") {
		loc := strings.TrimSpace(node.InnerText())
		if loc == "" {
			continue
		}
		lower := strings.ToLower(loc)
		for _, path := range themedPaths {
			if strings.Contains(lower, path) {
				out = append(out, loc)
				break
			}
		}
	}
	return out
}
