// Package telemetry exposes Prometheus collectors for the checker.
package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	checkerProbesTotal          *prometheus.CounterVec
	checkerProbeDurationSeconds *prometheus.HistogramVec
	checkerRecordsFetchedTotal  prometheus.Counter
	checkerDuplicatesTotal      prometheus.Counter
	checkerActiveProbes         prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		checkerProbesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checker_probes_total",
				Help: "Total number of URL probes, labeled by resulting status.",
			},
			[]string{"status"},
		)

		checkerProbeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checker_probe_duration_seconds",
				Help:    "Histogram of probe latencies, labeled by resulting status.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"status"},
		)

		checkerRecordsFetchedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "checker_records_fetched_total",
				Help: "Total number of link records fetched from the store.",
			},
		)

		checkerDuplicatesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "checker_duplicates_archived_total",
				Help: "Total number of duplicate records archived.",
			},
		)

		checkerActiveProbes = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "checker_active_probes",
				Help: "Number of probes currently in flight.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProbe records one finished probe.
func ObserveProbe(status string, duration time.Duration) {
	Init()
	checkerProbesTotal.WithLabelValues(status).Inc()
	checkerProbeDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveRecordsFetched adds to the fetched records counter.
func ObserveRecordsFetched(count int) {
	Init()
	if count > 0 {
		checkerRecordsFetchedTotal.Add(float64(count))
	}
}

// ObserveDuplicateArchived increments the archived duplicates counter.
func ObserveDuplicateArchived() {
	Init()
	checkerDuplicatesTotal.Inc()
}

// IncActiveProbes increments the in-flight probe gauge.
func IncActiveProbes() {
	Init()
	checkerActiveProbes.Inc()
}

// DecActiveProbes decrements the in-flight probe gauge.
func DecActiveProbes() {
	Init()
	checkerActiveProbes.Dec()
}
