// Package pipeline drives one full ingestion run: every category in fixed
// order through the aggregator, then the final flush into the dispatcher.
package pipeline

import (
	"context"
	"log"
	"time"

	"example.com/healthingest/internal/aggregate"
	"example.com/healthingest/internal/dispatch"
	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/source"
	"example.com/healthingest/internal/summary"
)

// Option configures optional behaviour for the Runner.
type Option func(*Runner)

// WithLogger overrides the logger used to report run progress.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner wires the aggregation phase to the delivery phase for one run.
type Runner struct {
	dataDir        string
	flushThreshold int
	builder        *summary.Builder
	dispatcher     *dispatch.Dispatcher
	logger         *log.Logger
}

// New constructs a Runner.
func New(dataDir string, flushThreshold int, builder *summary.Builder, dispatcher *dispatch.Dispatcher, opts ...Option) *Runner {
	r := &Runner{
		dataDir:        dataDir,
		flushThreshold: flushThreshold,
		builder:        builder,
		dispatcher:     dispatcher,
		logger:         log.New(log.Writer(), "[pipeline] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report summarises one completed run.
type Report struct {
	Records           int
	Dropped           int
	ParseSkips        int
	CategoriesSkipped int
	Summaries         int
	Delivered         int64
	Failed            int64
	Retried           int64
	Elapsed           time.Duration
}

// Run processes every category source to end-of-input. A missing or
// unreadable category file is skipped with a warning; the run continues past
// every partial failure and only stops early on context cancellation.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	agg := aggregate.New(r.flushThreshold, func(key domain.DayKey, acc *aggregate.Accumulator) {
		report.Summaries++
		r.dispatcher.Enqueue(ctx, r.builder.Build(key, acc))
	})

	for _, category := range source.ProcessingOrder {
		if err := ctx.Err(); err != nil {
			report.Records = agg.Ingested()
			report.Dropped = agg.Dropped()
			return r.finish(ctx, report, start), err
		}

		stream, err := source.Open(r.dataDir, category)
		if err != nil {
			r.logger.Printf("warning: skipping category %s: %v", category, err)
			source.RecordCategorySkipped(category)
			report.CategoriesSkipped++
			continue
		}

		r.logger.Printf("processing %s...", category.FileName())
		for {
			rec, ok := stream.Next()
			if !ok {
				break
			}
			agg.Ingest(rec)
		}
		if err := stream.Err(); err != nil {
			r.logger.Printf("warning: %v", err)
		}
		report.ParseSkips += stream.Skipped()
		_ = stream.Close()
	}

	agg.FlushRemaining()
	report.Records = agg.Ingested()
	report.Dropped = agg.Dropped()

	return r.finish(ctx, report, start), nil
}

// finish drains the dispatcher and snapshots its counters.
func (r *Runner) finish(ctx context.Context, report Report, start time.Time) Report {
	r.dispatcher.Flush(ctx)

	stats := r.dispatcher.Stats()
	report.Delivered = stats.Delivered
	report.Failed = stats.Failed
	report.Retried = stats.Retried
	report.Elapsed = time.Since(start)
	return report
}
