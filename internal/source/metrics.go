package source

import "github.com/prometheus/client_golang/prometheus"

var (
	parseSkipCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "source",
		Name:      "records_skipped_total",
		Help:      "Number of records skipped for parse or validation failures per category.",
	}, []string{"category"})

	categorySkipCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "health_ingest",
		Subsystem: "source",
		Name:      "categories_skipped_total",
		Help:      "Number of category files skipped because they were missing or unreadable.",
	}, []string{"category"})
)

func init() {
	prometheus.MustRegister(parseSkipCounter, categorySkipCounter)
}

func recordParseSkip(category Category) {
	parseSkipCounter.WithLabelValues(string(category)).Inc()
}

// RecordCategorySkipped counts a category-level skip. Exposed for the
// pipeline, which owns the decision to skip a missing file.
func RecordCategorySkipped(category Category) {
	categorySkipCounter.WithLabelValues(string(category)).Inc()
}
