package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/startupconnect/harvester/internal/metrics"
	"github.com/startupconnect/harvester/internal/progress"
)

// ErrNoMatches is returned when the startup has no investor matches to
// harvest; the API layer maps it to 404.
var ErrNoMatches = errors.New("no matches found for startup")

// Config holds the orchestrator tuning knobs. Zero values fall back to the
// defaults below.
type Config struct {
	// MatchConcurrency is how many matches are harvested per wave.
	MatchConcurrency int
	// URLConcurrency is how many page fetches run per wave within a match.
	URLConcurrency int
	// FetchTimeout is the hard per-page deadline.
	FetchTimeout time.Duration
	// SitemapTimeout is the deadline for the sitemap probe.
	SitemapTimeout time.Duration
}

const (
	defaultMatchConcurrency = 5
	defaultURLConcurrency   = 3
	defaultFetchTimeout     = 3 * time.Second
	defaultSitemapTimeout   = 2 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MatchConcurrency <= 0 {
		c.MatchConcurrency = defaultMatchConcurrency
	}
	if c.URLConcurrency <= 0 {
		c.URLConcurrency = defaultURLConcurrency
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.SitemapTimeout <= 0 {
		c.SitemapTimeout = defaultSitemapTimeout
	}
	return c
}

// Orchestrator runs one harvest batch per request: it resolves a startup's
// matches and drives normalize → discover → fetch → extract → filter →
// persist for each of them. Matches and page fetches are both processed in
// bounded waves; the orchestrator waits for a whole wave before starting the
// next one. One match's failure never aborts its siblings.
type Orchestrator struct {
	matches    MatchStore
	emails     EmailStore
	fetcher    Fetcher
	discoverer *Discoverer
	publisher  Publisher
	emitter    progress.Emitter
	clock      Clock
	cfg        Config
	logger     *zap.Logger
}

// NewOrchestrator constructs an Orchestrator. publisher and emitter may be
// nil, in which case completion events are not published or emitted.
func NewOrchestrator(
	matches MatchStore,
	emails EmailStore,
	fetcher Fetcher,
	publisher Publisher,
	emitter progress.Emitter,
	clock Clock,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Orchestrator{
		matches:    matches,
		emails:     emails,
		fetcher:    fetcher,
		discoverer: NewDiscoverer(fetcher, cfg.SitemapTimeout, logger.Named("discover")),
		publisher:  publisher,
		emitter:    emitter,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// HarvestStartup crawls every match of the given startup and returns the
// aggregated result. Only the initial match lookup can fail the whole batch;
// per-match failures are collected into Result.Errors.
func (o *Orchestrator) HarvestStartup(ctx context.Context, startupID string) (Result, error) {
	matches, err := o.matches.ListByStartup(ctx, startupID)
	if err != nil {
		return Result{}, fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		return Result{}, ErrNoMatches
	}

	start := o.clock.Now()
	o.emit(progress.Event{StartupID: startupID, TS: start, Stage: progress.StageBatchStart})

	var (
		mu    sync.Mutex
		found = make(map[string]struct{})
		errs  []string
	)

	for wave := 0; wave < len(matches); wave += o.cfg.MatchConcurrency {
		end := min(wave+o.cfg.MatchConcurrency, len(matches))
		g := new(errgroup.Group)
		for _, match := range matches[wave:end] {
			if match.Website == "" {
				// Skipped, not an error.
				continue
			}
			g.Go(func() error {
				o.runMatch(ctx, startupID, match, &mu, found, &errs)
				return nil
			})
		}
		// Per-match failures are recorded, never returned, so Wait cannot
		// fail here.
		_ = g.Wait()
	}

	emails := sortedKeys(found)
	result := Result{Count: len(emails), Emails: emails, Errors: errs}

	finished := o.clock.Now()
	o.emit(progress.Event{
		StartupID: startupID,
		TS:        finished,
		Stage:     progress.StageBatchDone,
		Emails:    result.Count,
		Dur:       finished.Sub(start),
	})
	o.publishCompletion(ctx, startupID, result, finished)
	return result, nil
}

func (o *Orchestrator) runMatch(
	ctx context.Context,
	startupID string,
	match Match,
	mu *sync.Mutex,
	found map[string]struct{},
	errs *[]string,
) {
	o.emit(progress.Event{
		StartupID: startupID,
		MatchID:   match.ID,
		TS:        o.clock.Now(),
		Stage:     progress.StageMatchStart,
	})

	emails, err := o.harvestMatch(ctx, match)

	mu.Lock()
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("error processing match %s: %v", match.ID, err))
	}
	for _, email := range emails {
		found[email] = struct{}{}
	}
	mu.Unlock()

	note := ""
	if err != nil {
		note = err.Error()
		o.logger.Warn("match harvest failed",
			zap.String("match_id", match.ID),
			zap.String("website", match.Website),
			zap.Error(err),
		)
	}
	o.emit(progress.Event{
		StartupID: startupID,
		MatchID:   match.ID,
		TS:        o.clock.Now(),
		Stage:     progress.StageMatchDone,
		Emails:    len(emails),
		Note:      note,
	})
}

// harvestMatch runs the full pipeline for a single match. Fetch failures are
// soft and contribute nothing; only failures outside the fetch loop (panics,
// persistence errors) surface as the match's error.
func (o *Orchestrator) harvestMatch(ctx context.Context, match Match) (emails []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			// One broken page must not take down the batch.
			emails = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	base := NormalizeURL(match.Website)
	urls := o.discoverer.Discover(ctx, base)

	var (
		mu    sync.Mutex
		found = make(map[string]struct{})
	)
	for wave := 0; wave < len(urls); wave += o.cfg.URLConcurrency {
		end := min(wave+o.cfg.URLConcurrency, len(urls))
		g := new(errgroup.Group)
		for _, pageURL := range urls[wave:end] {
			g.Go(func() error {
				body := o.fetchPage(ctx, pageURL)
				if body == nil {
					return nil
				}
				extracted := ExtractEmails(body)
				mu.Lock()
				for _, email := range extracted {
					found[email] = struct{}{}
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	kept := FilterNoise(sortedKeys(found))
	if len(kept) == 0 {
		return nil, nil
	}
	if err := o.emails.UpsertEmails(ctx, match.ID, kept); err != nil {
		return nil, fmt.Errorf("persist emails: %w", err)
	}
	return kept, nil
}

// fetchPage retrieves one page under the hard fetch timeout. Every failure
// mode (timeout, connection error, non-200) is soft and yields nil.
func (o *Orchestrator) fetchPage(ctx context.Context, pageURL string) []byte {
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	res, err := o.fetcher.Fetch(fetchCtx, pageURL)
	if err != nil {
		metrics.ObserveFetch(pageURL, "error", 0)
		o.logger.Debug("page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	metrics.ObserveFetch(pageURL, strconv.Itoa(res.StatusCode), len(res.Body))
	if res.StatusCode != http.StatusOK {
		return nil
	}
	return res.Body
}

func (o *Orchestrator) emit(evt progress.Event) {
	if o.emitter == nil {
		return
	}
	o.emitter.Emit(evt)
}

func (o *Orchestrator) publishCompletion(ctx context.Context, startupID string, result Result, finished time.Time) {
	if o.publisher == nil {
		return
	}
	payload := map[string]any{
		"startup_id":  startupID,
		"count":       result.Count,
		"errors":      len(result.Errors),
		"finished_at": finished.Format(time.RFC3339),
	}
	if _, err := o.publisher.Publish(ctx, payload); err != nil {
		o.logger.Warn("publish harvest completion failed", zap.String("startup_id", startupID), zap.Error(err))
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
