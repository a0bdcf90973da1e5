// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "schooladmin"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	accountDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_decisions_total",
		Help:      "Registration outcomes by role and result.",
	}, []string{"role", "result"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests refused by the rate limiter.",
	})
)

// Account decision results
const (
	ResultRegistered = "registered"
	ResultRequested  = "requested"
	ResultApproved   = "approved"
	ResultRejected   = "rejected"
	ResultFailed     = "failed"
)

// ObserveRequest records one served HTTP request. route is the matched gin
// path so that IDs do not explode label cardinality.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// AccountDecision counts a registration outcome
func AccountDecision(role, result string) {
	accountDecisions.WithLabelValues(role, result).Inc()
}

// RateLimited counts a throttled request
func RateLimited() {
	rateLimited.Inc()
}
