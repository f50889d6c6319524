package postgres

import (
	"context"
	"fmt"

	"github.com/startupconnect/harvester/internal/harvest"
)

// MatchStore reads investor match rows owned by the matching engine.
type MatchStore struct {
	pool  Pool
	table string
}

// NewMatchStore constructs a store over an existing pool.
func NewMatchStore(pool Pool, table string) (*MatchStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	t, err := tableOrDefault(table, "matches")
	if err != nil {
		return nil, err
	}
	return &MatchStore{pool: pool, table: t}, nil
}

// ListByStartup returns the id and website of every match for a startup.
func (s *MatchStore) ListByStartup(ctx context.Context, startupID string) ([]harvest.Match, error) {
	query := fmt.Sprintf(
		`SELECT id, COALESCE(website, '') FROM %s WHERE startup_id = $1 ORDER BY id`,
		s.table,
	)
	rows, err := s.pool.Query(ctx, query, startupID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []harvest.Match
	for rows.Next() {
		var m harvest.Match
		if err := rows.Scan(&m.ID, &m.Website); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}
