// Package metrics provides Prometheus metrics for resdb.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recordFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resdb_record_fetch_total",
			Help: "Record fetches issued by edit sessions",
		},
		[]string{"result"},
	)

	recordPersistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resdb_record_persist_total",
			Help: "Record saves issued by edit sessions",
		},
		[]string{"result"},
	)

	reconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resdb_directory_reconcile_total",
			Help: "Directory reconciliations after a commit, by outcome",
		},
		[]string{"outcome"},
	)

	staleResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resdb_stale_results_total",
			Help: "Async results discarded because their popup was already closed",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resdb_http_requests_total",
			Help: "Total number of record API requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resdb_http_request_duration_seconds",
			Help:    "Record API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func RecordFetch(err error) { recordFetchTotal.WithLabelValues(resultLabel(err)).Inc() }

func RecordPersist(err error) { recordPersistTotal.WithLabelValues(resultLabel(err)).Inc() }

func Reconcile(outcome string) { reconcileTotal.WithLabelValues(outcome).Inc() }

func StaleResult() { staleResultsTotal.Inc() }

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument wraps next with request counters and latency histograms under route.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
