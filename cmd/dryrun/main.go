package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"example.com/healthingest/internal/config"
	"example.com/healthingest/internal/dispatch"
	"example.com/healthingest/internal/pipeline"
	"example.com/healthingest/internal/profile"
	"example.com/healthingest/internal/sink"
	"example.com/healthingest/internal/summary"
)

// dryrun runs the full pipeline against a local print sink with small
// batches. No network calls are made.
func main() {
	cfg := config.Load()
	cfg.SinkURL = config.PrintModeSentinel
	cfg.BatchSize = 10

	log.Printf("dry run over %s: summaries will be printed, not sent", cfg.DataDir)

	profiles, err := profile.Load(filepath.Join(cfg.DataDir, profile.FileName))
	if err != nil {
		log.Fatalf("failed to load user profiles: %v", err)
	}
	log.Printf("loaded %d user profiles", profiles.Len())

	dispatcher := dispatch.New(sink.NewPrintSink(os.Stdout), dispatch.Config{
		BatchSize:      cfg.BatchSize,
		MaxConcurrency: cfg.MaxConcurrency,
		MaxAttempts:    cfg.MaxAttempts,
		BaseDelay:      cfg.RetryBaseDelay,
	})

	runner := pipeline.New(cfg.DataDir, cfg.FlushThreshold, summary.NewBuilder(profiles), dispatcher)

	report, err := runner.Run(context.Background())
	if err != nil {
		log.Printf("run ended early: %v", err)
	}

	log.Printf("dry run completed: %d records, %d summaries in %s",
		report.Records, report.Summaries, report.Elapsed.Round(time.Millisecond))
}
