// Package progress defines the event stream emitted by harvest runs and the
// hub that fans events out to sinks without blocking the pipeline.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageBatchStart Stage = "BATCH_START"
	StageBatchDone  Stage = "BATCH_DONE"
	StageMatchStart Stage = "MATCH_START"
	StageMatchDone  Stage = "MATCH_DONE"
)

// Event captures a single milestone of a harvest run.
type Event struct {
	// StartupID identifies the batch the event belongs to.
	StartupID string
	// MatchID scopes match-level events; empty for batch-level stages.
	MatchID string
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Emails carries the address count for completion stages.
	Emails int
	// Dur captures wall time for completion stages.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.StartupID == "" {
		return errors.New("startup id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageBatchStart, StageBatchDone:
	case StageMatchStart, StageMatchDone:
		if e.MatchID == "" {
			return fmt.Errorf("%s requires match id", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
