// Package analytics computes the aggregates behind every view: card
// rollups, top transactions, category spend over a trailing window,
// round-up investment and currency/stock conversions.
//
// Every operation is total. Bad or empty input is logged and degrades to
// an empty or zero result; nothing here returns an error.
package analytics

import (
	"time"

	"github.com/rs/zerolog"
)

// Engine runs the aggregations. It holds no state between calls and is
// safe for concurrent use.
type Engine struct {
	log zerolog.Logger
	now func() time.Time
}

// New creates an Engine that logs through log and reads the wall clock.
func New(log zerolog.Logger) *Engine {
	return NewWithClock(log, time.Now)
}

// NewWithClock creates an Engine with an explicit clock, used when a
// category report is requested without a reference date.
func NewWithClock(log zerolog.Logger, now func() time.Time) *Engine {
	return &Engine{log: log, now: now}
}
