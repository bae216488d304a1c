package dispatch

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "dispatch",
		Name:      "summaries_delivered_total",
		Help:      "Number of summaries acknowledged by the sink.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "dispatch",
		Name:      "summaries_failed_total",
		Help:      "Number of summaries that exhausted every delivery attempt.",
	})

	retriesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "dispatch",
		Name:      "delivery_retries_total",
		Help:      "Number of delivery attempts retried after a failure.",
	})

	batchesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "dispatch",
		Name:      "batches_total",
		Help:      "Number of summary batches dispatched.",
	})

	chunkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "health_ingest",
		Subsystem: "dispatch",
		Name:      "chunk_duration_seconds",
		Help:      "Time for a chunk of concurrent deliveries to fully settle.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, retriesCounter, batchesCounter, chunkDuration)
}
