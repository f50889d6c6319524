package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/startupconnect/harvester/internal/progress"
)

func TestPrometheusSink_Consume(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	batch := []progress.Event{
		{StartupID: "s1", TS: ts, Stage: progress.StageBatchStart},
		{StartupID: "s1", MatchID: "m1", TS: ts, Stage: progress.StageMatchStart},
		{StartupID: "s1", MatchID: "m1", TS: ts, Stage: progress.StageMatchDone, Emails: 3},
		{StartupID: "s1", MatchID: "m2", TS: ts, Stage: progress.StageMatchDone, Note: "panic: boom"},
		{StartupID: "s1", TS: ts, Stage: progress.StageBatchDone, Emails: 3, Dur: 12 * time.Second},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, float64(1), testutil.ToFloat64(sink.batchesStarted))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.batchesCompleted))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.matchesProcessed.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.matchesProcessed.WithLabelValues("error")))
	require.Equal(t, float64(3), testutil.ToFloat64(sink.emailsHarvested))
}

func TestPrometheusSink_DoubleRegisterFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}

func TestLogSink_Consume(t *testing.T) {
	t.Parallel()

	sink := NewLogSink(nil)
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{
		{StartupID: "s1", Stage: progress.StageBatchStart, TS: time.Now()},
	}))
	require.NoError(t, sink.Close(context.Background()))
}
