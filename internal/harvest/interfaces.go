package harvest

import (
	"context"
	"time"
)

// MatchStore resolves the investor matches belonging to a startup.
type MatchStore interface {
	ListByStartup(ctx context.Context, startupID string) ([]Match, error)
}

// EmailStore persists harvested emails. UpsertEmails must be idempotent on
// (matchID, email): re-harvesting an address leaves the existing row
// untouched. The whole batch for one match is written atomically.
type EmailStore interface {
	UpsertEmails(ctx context.Context, matchID string, emails []string) error
	ListValidByStartup(ctx context.Context, startupID string) ([]HarvestedEmail, error)
}

// Fetcher retrieves a single URL. Implementations enforce a hard timeout via
// the supplied context and return an error for any non-200 outcome.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// Publisher pushes batch-completion events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
