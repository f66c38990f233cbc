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
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_queries_total",
			Help: "Queries answered, by outcome",
		},
		[]string{"outcome"},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_query_duration_seconds",
			Help:    "End-to-end duration of a query in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_search_requests_total",
			Help: "Search provider calls, by provider and status",
		},
		[]string{"provider", "status"},
	)

	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_fetch_requests_total",
			Help: "Article fetches, by status and detected bot protection",
		},
		[]string{"status", "blocked_by"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_fetch_duration_seconds",
			Help:    "Duration of article fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 50},
		},
	)

	FetchBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scout_fetch_bytes_total",
			Help: "Bytes downloaded across all article fetches",
		},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_proxy_failures_total",
			Help: "Proxy failures during article fetches",
		},
		[]string{"proxy_url"},
	)

	SynthesisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_synthesis_total",
			Help: "Language model invocations, by provider, call shape and outcome",
		},
		[]string{"provider", "shape", "outcome"},
	)
)

// RecordFetch updates the fetch collectors. status is 0 when no response
// arrived; blockedBy is empty unless a bot-protection page was recognised.
func RecordFetch(status int, blockedBy string, bytes int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	FetchRequestsTotal.WithLabelValues(label, blockedBy).Inc()
	FetchDuration.Observe(d.Seconds())
	FetchBytesTotal.Add(float64(bytes))
}

// RecordSearch counts one search provider call.
func RecordSearch(provider string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	SearchRequestsTotal.WithLabelValues(provider, label).Inc()
}

// RecordQuery counts one pipeline run.
func RecordQuery(outcome string, d time.Duration) {
	QueriesTotal.WithLabelValues(outcome).Inc()
	QueryDuration.Observe(d.Seconds())
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSynthesis counts one language model call attempt.
func RecordSynthesis(provider, shape, outcome string) {
	SynthesisTotal.WithLabelValues(provider, shape, outcome).Inc()
}
