// Package collyfetcher implements harvest.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/startupconnect/harvester/internal/harvest"
)

// defaultUserAgent mimics a desktop browser; some investor sites block
// default Go client identifiers outright.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements harvest.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher with a pooled transport shared across clones.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true

	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET. The request deadline is the tighter of
// the configured timeout and the context deadline, and expiry aborts the
// in-flight request rather than merely abandoning it. Non-2xx responses
// return an error alongside the recorded status code.
func (f *Fetcher) Fetch(ctx context.Context, url string) (harvest.FetchResult, error) {
	var (
		result   harvest.FetchResult
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(f.transport)
	collector.SetRequestTimeout(f.requestTimeout(ctx))

	collector.OnResponse(func(r *colly.Response) {
		result = harvest.FetchResult{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.URL = url
			result.StatusCode = r.StatusCode
		}
		fetchErr = err
	})

	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		return result, err
	}
	return result, nil
}

func (f *Fetcher) requestTimeout(ctx context.Context) time.Duration {
	timeout := f.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
