package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublisher_RecordsPayloads(t *testing.T) {
	t.Parallel()

	p := New()
	id1, err := p.Publish(context.Background(), map[string]any{"startup_id": "s1"})
	require.NoError(t, err)
	require.Equal(t, "mem-1", id1)

	id2, err := p.Publish(context.Background(), map[string]any{"startup_id": "s2"})
	require.NoError(t, err)
	require.Equal(t, "mem-2", id2)

	payloads := p.Payloads()
	require.Len(t, payloads, 2)
	require.Equal(t, map[string]any{"startup_id": "s1"}, payloads[0])
}

func TestPublisher_PayloadsReturnsCopy(t *testing.T) {
	t.Parallel()

	p := New()
	_, err := p.Publish(context.Background(), "payload")
	require.NoError(t, err)

	snapshot := p.Payloads()
	snapshot[0] = "mutated"
	require.Equal(t, "payload", p.Payloads()[0])
}
