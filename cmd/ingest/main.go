package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/healthingest/internal/config"
	"example.com/healthingest/internal/dispatch"
	"example.com/healthingest/internal/pipeline"
	"example.com/healthingest/internal/profile"
	"example.com/healthingest/internal/sink"
	"example.com/healthingest/internal/summary"
)

func main() {
	cfg := config.Load()
	runID := uuid.NewString()

	log.Printf("health ingestion starting (run=%s, data=%s)", runID, cfg.DataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		log.Println("shutdown requested")
		cancel()
	}()

	profiles, err := profile.Load(filepath.Join(cfg.DataDir, profile.FileName))
	if err != nil {
		log.Fatalf("failed to load user profiles: %v", err)
	}
	log.Printf("loaded %d user profiles", profiles.Len())

	var deliverySink sink.Sink
	if cfg.PrintMode() {
		log.Println("print mode: summaries will be rendered locally")
		deliverySink = sink.NewPrintSink(os.Stdout)
	} else {
		deliverySink = sink.NewHTTPSink(sink.HTTPConfig{
			URL:             cfg.SinkURL,
			RequestTimeout:  cfg.RequestTimeout,
			ConnectTimeout:  cfg.ConnectTimeout,
			ResponseTimeout: cfg.ResponseTimeout,
		})
	}

	dispatcher := dispatch.New(deliverySink, dispatch.Config{
		BatchSize:      cfg.BatchSize,
		MaxConcurrency: cfg.MaxConcurrency,
		MaxAttempts:    cfg.MaxAttempts,
		BaseDelay:      cfg.RetryBaseDelay,
	})

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		log.Printf("metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	runner := pipeline.New(cfg.DataDir, cfg.FlushThreshold, summary.NewBuilder(profiles), dispatcher)

	report, runErr := runner.Run(ctx)
	if runErr != nil {
		log.Printf("run ended early: %v", runErr)
	}

	log.Printf("ingestion completed: %d records processed (%d dropped, %d parse skips, %d categories skipped), %d summaries, %d delivered, %d failed, %d retried in %s",
		report.Records, report.Dropped, report.ParseSkips, report.CategoriesSkipped,
		report.Summaries, report.Delivered, report.Failed, report.Retried, report.Elapsed.Round(time.Millisecond))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
}
