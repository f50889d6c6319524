package harvest

import "time"

// EmailStatus is the validation state persisted with each harvested address.
type EmailStatus string

// Email status values persisted in the email store.
const (
	EmailStatusValid   EmailStatus = "valid"
	EmailStatusPending EmailStatus = "pending"
	EmailStatusInvalid EmailStatus = "invalid"
)

// Match is one candidate investor associated with a startup. The matching
// engine owns these records; the harvester only reads the id and website.
type Match struct {
	ID      string `json:"id"`
	Website string `json:"website"`
}

// HarvestedEmail is a persisted (match, email) pair.
type HarvestedEmail struct {
	MatchID   string      `json:"match_id"`
	Email     string      `json:"email"`
	Status    EmailStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Result aggregates one batch run. It is request-scoped and never persisted.
type Result struct {
	Count  int      `json:"count"`
	Emails []string `json:"emails"`
	Errors []string `json:"errors,omitempty"`
}

// FetchResult is the outcome of fetching a single page.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}
