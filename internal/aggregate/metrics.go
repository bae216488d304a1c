package aggregate

import (
	"github.com/prometheus/client_golang/prometheus"

	"example.com/healthingest/internal/source"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "aggregate",
		Name:      "records_processed_total",
		Help:      "Number of records ingested per category.",
	}, []string{"category"})

	droppedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "aggregate",
		Name:      "records_dropped_total",
		Help:      "Number of records dropped for a missing user or date key.",
	}, []string{"category"})

	flushedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "aggregate",
		Name:      "accumulators_flushed_total",
		Help:      "Number of user-day accumulators evicted, by flush reason.",
	}, []string{"reason"})

	liveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "health_ingest",
		Subsystem: "aggregate",
		Name:      "live_accumulators",
		Help:      "Number of user-day accumulators currently held in memory.",
	})
)

func init() {
	prometheus.MustRegister(processedCounter, droppedCounter, flushedCounter, liveGauge)
}

func recordProcessed(category source.Category) {
	processedCounter.WithLabelValues(string(category)).Inc()
}

func recordDropped(category source.Category) {
	droppedCounter.WithLabelValues(string(category)).Inc()
}

func recordFlushed(reason string, count int) {
	flushedCounter.WithLabelValues(reason).Add(float64(count))
}
