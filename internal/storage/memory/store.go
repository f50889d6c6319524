// Package memory provides in-memory store implementations for development
// and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/startupconnect/harvester/internal/harvest"
)

// Store implements harvest.MatchStore and harvest.EmailStore behind a
// mutex.
type Store struct {
	mu sync.RWMutex
	// matches is keyed by startup id, emails by match id then address, and
	// owners maps a match id back to its startup.
	matches map[string][]harvest.Match
	emails  map[string]map[string]harvest.HarvestedEmail
	owners  map[string]string
	clock   harvest.Clock
}

// NewStore constructs an empty Store. clock may be nil, in which case
// time.Now is used for created-at stamps.
func NewStore(clock harvest.Clock) *Store {
	return &Store{
		matches: make(map[string][]harvest.Match),
		emails:  make(map[string]map[string]harvest.HarvestedEmail),
		owners:  make(map[string]string),
		clock:   clock,
	}
}

// SeedMatches registers matches for a startup, replacing any previous seed.
func (s *Store) SeedMatches(startupID string, matches []harvest.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[startupID] = append([]harvest.Match(nil), matches...)
	for _, m := range matches {
		s.owners[m.ID] = startupID
	}
}

// ListByStartup returns the seeded matches for a startup.
func (s *Store) ListByStartup(_ context.Context, startupID string) ([]harvest.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]harvest.Match, len(s.matches[startupID]))
	copy(out, s.matches[startupID])
	return out, nil
}

// UpsertEmails inserts missing (matchID, email) rows with status valid and
// leaves existing rows untouched.
func (s *Store) UpsertEmails(_ context.Context, matchID string, emails []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.emails[matchID]
	if !ok {
		rows = make(map[string]harvest.HarvestedEmail)
		s.emails[matchID] = rows
	}
	for _, email := range emails {
		if _, exists := rows[email]; exists {
			continue
		}
		rows[email] = harvest.HarvestedEmail{
			MatchID:   matchID,
			Email:     email,
			Status:    harvest.EmailStatusValid,
			CreatedAt: s.now(),
		}
	}
	return nil
}

// ListValidByStartup returns every valid row belonging to the startup's
// matches, ordered by match then address.
func (s *Store) ListValidByStartup(_ context.Context, startupID string) ([]harvest.HarvestedEmail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []harvest.HarvestedEmail
	for matchID, rows := range s.emails {
		if s.owners[matchID] != startupID {
			continue
		}
		for _, row := range rows {
			if row.Status == harvest.EmailStatusValid {
				out = append(out, row)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// CountEmails reports how many rows exist for a match (test helper).
func (s *Store) CountEmails(matchID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails[matchID])
}

func (s *Store) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return time.Now().UTC()
}
