package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ingestion cycle metrics
	CycleRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_cycle_runs_total",
			Help: "Total number of ingestion refresh cycles",
		},
		[]string{"status"}, // status: success|error
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sniper_cycle_duration_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	CycleLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_cycle_last_run_timestamp",
			Help: "Unix timestamp of the last completed refresh cycle",
		},
	)

	// Source metrics
	SourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_source_fetches_total",
			Help: "Total number of source collections",
		},
		[]string{"source", "status"}, // status: success|error
	)

	SourceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sniper_source_latency_seconds",
			Help:    "Source collection latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	PostsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_posts_scanned_total",
			Help: "Posts examined for ticker mentions",
		},
		[]string{"source"},
	)

	// Sentiment metrics
	EntriesAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_sentiment_entries_total",
			Help: "Sentiment entries appended to the store",
		},
		[]string{"ticker", "label"},
	)

	ClassifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_classify_failures_total",
			Help: "Failed sentiment classifications",
		},
	)

	StoredEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_stored_entries",
			Help: "Sentiment entries currently held in memory",
		},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(CycleRuns)
		prometheus.MustRegister(CycleDuration)
		prometheus.MustRegister(CycleLastRun)

		prometheus.MustRegister(SourceFetches)
		prometheus.MustRegister(SourceLatency)
		prometheus.MustRegister(PostsScanned)

		prometheus.MustRegister(EntriesAdded)
		prometheus.MustRegister(ClassifyFailures)
		prometheus.MustRegister(StoredEntries)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCycle records a finished refresh cycle.
func RecordCycle(duration time.Duration, finishedAt time.Time, storedEntries int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	CycleRuns.WithLabelValues(status).Inc()
	CycleDuration.Observe(duration.Seconds())
	CycleLastRun.Set(float64(finishedAt.Unix()))
	StoredEntries.Set(float64(storedEntries))
}

// RecordSourceFetch records one source collection and the posts it returned.
func RecordSourceFetch(source string, latency time.Duration, posts int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SourceFetches.WithLabelValues(source, status).Inc()
	SourceLatency.WithLabelValues(source).Observe(latency.Seconds())
	if posts > 0 {
		PostsScanned.WithLabelValues(source).Add(float64(posts))
	}
}

func RecordEntry(ticker, label string) {
	EntriesAdded.WithLabelValues(ticker, label).Inc()
}

func RecordClassifyFailure() {
	ClassifyFailures.Inc()
}
