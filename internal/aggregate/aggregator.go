// Package aggregate folds per-record health data into per-user-day accumulators.
package aggregate

import (
	"log"

	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/source"
)

// Accumulator collects the rendered fragments and heart-rate samples for one
// user on one calendar date. Fragments keep their append order per category.
type Accumulator struct {
	Activities []string
	Workouts   []string
	Nutrition  []string
	Sleep      []string
	HeartRates []float64
}

// Substantial reports whether the accumulator is eligible for an early
// flush: at least one activity or nutrition fragment.
func (a *Accumulator) Substantial() bool {
	return len(a.Activities) > 0 || len(a.Nutrition) > 0
}

// FlushFunc receives an evicted accumulator. Ownership transfers to the
// callee; the aggregator never touches the accumulator again.
type FlushFunc func(key domain.DayKey, acc *Accumulator)

// Option configures optional behaviour for the Aggregator.
type Option func(*Aggregator)

// WithLogger overrides the logger used to report flush activity.
func WithLogger(logger *log.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// Aggregator owns the live map of accumulators for the duration of the
// ingestion pass. It is single-threaded; records are ingested one at a time.
type Aggregator struct {
	days           map[domain.DayKey]*Accumulator
	flush          FlushFunc
	flushThreshold int
	ingested       int
	dropped        int
	logger         *log.Logger
}

// New constructs an Aggregator that evicts substantial accumulators through
// flush every flushThreshold ingested records.
func New(flushThreshold int, flush FlushFunc, opts ...Option) *Aggregator {
	if flushThreshold <= 0 {
		flushThreshold = 50000
	}
	a := &Aggregator{
		days:           make(map[domain.DayKey]*Accumulator),
		flush:          flush,
		flushThreshold: flushThreshold,
		logger:         log.New(log.Writer(), "[aggregate] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ingest folds one record into its user-day accumulator. Records without a
// usable key are dropped and counted; a single malformed record never fails
// the pass.
func (a *Aggregator) Ingest(rec source.Record) {
	a.ingested++
	recordProcessed(rec.Category())

	key, ok := rec.DayKey()
	if !ok {
		a.dropped++
		recordDropped(rec.Category())
		return
	}

	// Measurements count toward the flush threshold but never render a
	// fragment, so a measurement-only user-day must not materialize an
	// accumulator (it would otherwise flush as a preamble-only summary).
	if _, ok := rec.(*source.MeasurementRecord); ok {
		a.maybeFlush()
		return
	}

	acc, exists := a.days[key]
	if !exists {
		acc = &Accumulator{}
		a.days[key] = acc
		liveGauge.Set(float64(len(a.days)))
	}

	switch r := rec.(type) {
	case *source.ActivityRecord:
		acc.Activities = append(acc.Activities, activityFragment(r))
	case *source.WorkoutRecord:
		acc.Workouts = append(acc.Workouts, workoutFragment(r))
	case *source.NutritionRecord:
		acc.Nutrition = append(acc.Nutrition, nutritionFragment(r))
	case *source.SleepRecord:
		acc.Sleep = append(acc.Sleep, sleepFragment(r))
	case *source.HeartRateRecord:
		acc.HeartRates = append(acc.HeartRates, r.Sample())
	}

	a.maybeFlush()
}

func (a *Aggregator) maybeFlush() {
	if a.ingested%a.flushThreshold == 0 {
		a.flushSubstantial()
	}
}

// flushSubstantial evicts every accumulator that already holds activity or
// nutrition data. Days flushed here can still receive records from a
// category processed later in the fixed file order; those late records then
// start a fresh accumulator and a second summary for the same day. That
// trade of correctness for bounded memory is intentional.
func (a *Aggregator) flushSubstantial() {
	flushed := 0
	for key, acc := range a.days {
		if !acc.Substantial() {
			continue
		}
		delete(a.days, key)
		a.flush(key, acc)
		flushed++
	}
	if flushed > 0 {
		recordFlushed("interval", flushed)
		a.logger.Printf("processed %d records, flushed %d user-days (%d live)", a.ingested, flushed, len(a.days))
	}
	liveGauge.Set(float64(len(a.days)))
}

// FlushRemaining evicts every remaining accumulator unconditionally. Called
// once at end-of-input.
func (a *Aggregator) FlushRemaining() {
	flushed := 0
	for key, acc := range a.days {
		delete(a.days, key)
		a.flush(key, acc)
		flushed++
	}
	if flushed > 0 {
		recordFlushed("final", flushed)
	}
	liveGauge.Set(0)
}

// Ingested reports the total number of records consumed.
func (a *Aggregator) Ingested() int { return a.ingested }

// Dropped reports the number of records dropped for a missing key.
func (a *Aggregator) Dropped() int { return a.dropped }

// Live reports the number of accumulators currently held.
func (a *Aggregator) Live() int { return len(a.days) }
