package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/startupconnect/harvester/internal/progress"
)

// PrometheusSink exports harvest progress metrics via Prometheus. It owns the
// collectors for batches started/completed, matches processed, and addresses
// harvested.
type PrometheusSink struct {
	batchesStarted   prometheus.Counter
	batchesCompleted prometheus.Counter
	batchRuntime     prometheus.Histogram
	matchesProcessed *prometheus.CounterVec
	emailsHarvested  prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		batchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_batches_started_total",
			Help: "Total harvest batches that have started.",
		}),
		batchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_batches_completed_total",
			Help: "Total harvest batches completed.",
		}),
		batchRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_batch_runtime_seconds",
			Help:    "Wall time per completed harvest batch.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		matchesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_matches_processed_total",
			Help: "Matches processed partitioned by result.",
		}, []string{"result"}),
		emailsHarvested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harvester_emails_harvested_total",
			Help: "Total addresses that survived validation and filtering.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.batchesStarted,
		s.batchesCompleted,
		s.batchRuntime,
		s.matchesProcessed,
		s.emailsHarvested,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageBatchStart:
		s.batchesStarted.Inc()
	case progress.StageBatchDone:
		s.batchesCompleted.Inc()
		if evt.Dur > 0 {
			s.batchRuntime.Observe(evt.Dur.Seconds())
		}
	case progress.StageMatchDone:
		result := "success"
		if evt.Note != "" {
			result = "error"
		}
		s.matchesProcessed.WithLabelValues(result).Inc()
		if evt.Emails > 0 {
			s.emailsHarvested.Add(float64(evt.Emails))
		}
	case progress.StageMatchStart:
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
