// Package metrics holds the Prometheus counters booklog exports.
//
// Counters register with the default registry on package load, so
// `booklog serve` can expose them with promhttp.Handler().
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultConflict = "conflict"
	ResultFound    = "found"
	ResultNone     = "none"
	ResultCached   = "cached"
)

var (
	// StoreOperations counts record store reads and writes.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booklog_store_operations_total",
			Help: "Record store reads and writes by backend and outcome.",
		},
		[]string{"backend", "op", "result"},
	)

	// CoverLookups counts cover catalog lookups.
	CoverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booklog_cover_lookups_total",
			Help: "Cover lookups by outcome.",
		},
		[]string{"result"},
	)

	// HTTPRequests counts API requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booklog_http_requests_total",
			Help: "HTTP API requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveStore records one store operation.
func ObserveStore(backend, op, result string) {
	StoreOperations.WithLabelValues(backend, op, result).Inc()
}

// ObserveCover records one cover lookup.
func ObserveCover(result string) {
	CoverLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP records one API request.
func ObserveHTTP(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
