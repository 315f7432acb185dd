package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "usersvc", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "usersvc", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "usersvc", Name: "store_operations_total", Help: "Document store operations by collection, operation and outcome."},
		[]string{"collection", "operation", "outcome"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "usersvc", Name: "store_operation_duration_seconds", Help: "Document store operation latency.", Buckets: prometheus.DefBuckets},
		[]string{"collection", "operation"},
	)
	HTTPResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "usersvc", Name: "http_responses_total", Help: "HTTP responses by route and status code."},
		[]string{"method", "route", "code"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(StoreOperations)
	reg.MustRegister(StoreLatency)
	reg.MustRegister(HTTPResponses)
}

// ObserveStoreOp records one store round-trip started at start.
func ObserveStoreOp(collection, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreOperations.WithLabelValues(collection, operation, outcome).Inc()
	StoreLatency.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
}
