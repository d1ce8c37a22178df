// Package stats counts gate outcomes. Recording is best-effort: callers log a
// failed Record and carry on.
package stats

import (
	"context"
	"math"
	"time"
)

type Outcome string

const (
	OutcomeAdmitted     Outcome = "admitted"
	OutcomeUnavailable  Outcome = "unavailable"
	OutcomeDeparted     Outcome = "departed"
	OutcomeInconsistent Outcome = "inconsistent"
	OutcomeRejected     Outcome = "rejected"
)

type Event struct {
	Outcome  Outcome
	SpotType string
	Amount   float64
	At       time.Time
}

type Summary struct {
	Totals     map[Outcome]int64            `json:"totals"`
	BySpotType map[string]map[Outcome]int64 `json:"by_spot_type"`
	Revenue    float64                      `json:"revenue"`
}

type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Snapshot(ctx context.Context) (Summary, error)
}

func newSummary() Summary {
	return Summary{
		Totals:     make(map[Outcome]int64),
		BySpotType: make(map[string]map[Outcome]int64),
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
