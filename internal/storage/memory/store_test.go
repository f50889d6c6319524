package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/startupconnect/harvester/internal/harvest"
)

type steppingClock struct{ t time.Time }

func (c *steppingClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func TestStore_ListByStartup(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	s.SeedMatches("s1", []harvest.Match{
		{ID: "m1", Website: "acme.vc"},
		{ID: "m2", Website: ""},
	})

	matches, err := s.ListByStartup(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	none, err := s.ListByStartup(context.Background(), "unknown")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	clock := &steppingClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(clock)
	s.SeedMatches("s1", []harvest.Match{{ID: "m1", Website: "acme.vc"}})

	require.NoError(t, s.UpsertEmails(context.Background(), "m1", []string{"jane@acme.vc"}))
	require.NoError(t, s.UpsertEmails(context.Background(), "m1", []string{"jane@acme.vc", "bob@acme.vc"}))
	require.Equal(t, 2, s.CountEmails("m1"))

	rows, err := s.ListValidByStartup(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// jane's row keeps its original stamp; the second upsert did not rewrite it.
	require.True(t, rows[1].CreatedAt.Before(rows[0].CreatedAt))
	require.Equal(t, harvest.EmailStatusValid, rows[0].Status)
}

func TestStore_ListValidByStartup_ScopedAndOrdered(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	s.SeedMatches("s1", []harvest.Match{{ID: "m1"}, {ID: "m2"}})
	s.SeedMatches("s2", []harvest.Match{{ID: "m3"}})

	require.NoError(t, s.UpsertEmails(context.Background(), "m2", []string{"z@firm.com", "a@firm.com"}))
	require.NoError(t, s.UpsertEmails(context.Background(), "m1", []string{"b@firm.com"}))
	require.NoError(t, s.UpsertEmails(context.Background(), "m3", []string{"other@firm.com"}))

	rows, err := s.ListValidByStartup(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "m1", rows[0].MatchID)
	require.Equal(t, "b@firm.com", rows[0].Email)
	require.Equal(t, "a@firm.com", rows[1].Email)
	require.Equal(t, "z@firm.com", rows[2].Email)
}

func TestStore_EmptyUpsert(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	require.NoError(t, s.UpsertEmails(context.Background(), "m1", nil))
	require.Zero(t, s.CountEmails("m1"))
}
