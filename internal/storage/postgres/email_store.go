package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/startupconnect/harvester/internal/harvest"
)

// EmailStore persists harvested emails keyed on (match_id, email).
type EmailStore struct {
	pool       Pool
	table      string
	matchTable string
}

// NewEmailStore constructs a store over an existing pool.
func NewEmailStore(pool Pool, table, matchTable string) (*EmailStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	t, err := tableOrDefault(table, "investor_emails")
	if err != nil {
		return nil, err
	}
	mt, err := tableOrDefault(matchTable, "matches")
	if err != nil {
		return nil, err
	}
	return &EmailStore{pool: pool, table: t, matchTable: mt}, nil
}

// UpsertEmails writes one match's batch inside a single transaction. Rows
// that already exist are left untouched, so re-harvesting the same address
// never duplicates a record or clobbers its original status.
func (s *EmailStore) UpsertEmails(ctx context.Context, matchID string, emails []string) error {
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}
	if len(emails) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	query := fmt.Sprintf(`
INSERT INTO %s (match_id, email, status)
VALUES ($1, $2, $3)
ON CONFLICT (match_id, email) DO NOTHING`, s.table)

	for _, email := range emails {
		if _, err := tx.Exec(ctx, query, matchID, email, harvest.EmailStatusValid); err != nil {
			return fmt.Errorf("insert email %s: %w", email, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

// ListValidByStartup returns every valid address harvested for a startup's
// matches, the read side consumed by the campaign sender.
func (s *EmailStore) ListValidByStartup(ctx context.Context, startupID string) ([]harvest.HarvestedEmail, error) {
	query := fmt.Sprintf(`
SELECT e.match_id, e.email, e.status, e.created_at
FROM %s e
JOIN %s m ON m.id = e.match_id
WHERE m.startup_id = $1 AND e.status = $2
ORDER BY e.match_id, e.email`, s.table, s.matchTable)

	rows, err := s.pool.Query(ctx, query, startupID, harvest.EmailStatusValid)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	var out []harvest.HarvestedEmail
	for rows.Next() {
		var he harvest.HarvestedEmail
		if err := rows.Scan(&he.MatchID, &he.Email, &he.Status, &he.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		out = append(out, he)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emails: %w", err)
	}
	return out, nil
}
