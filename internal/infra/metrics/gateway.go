package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		gatewayRequests,
		gatewayAttempts,
		gatewayRetries,
		gatewayDuration,
	)
}

var (
	// One per Execute call, labeled by the final outcome.
	// outcome: ok|validation|authentication|not_found|rate_limit|server|api|timeout|canceled|transport|internal
	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardinity_gateway_requests_total",
			Help: "Gateway calls by HTTP method and final outcome.",
		},
		[]string{"method", "outcome"},
	)

	// One per HTTP attempt, retries included.
	gatewayAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardinity_gateway_attempts_total",
			Help: "HTTP attempts against the gateway by method and status class.",
		},
		[]string{"method", "status_class"},
	)

	// reason: transport|rate_limit|server
	gatewayRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardinity_gateway_retries_total",
			Help: "Retries scheduled by reason.",
		},
		[]string{"reason"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardinity_gateway_attempt_duration_seconds",
			Help:    "Duration of a single gateway HTTP attempt in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method"},
	)
)

func ObserveAttempt(method string, status int, d time.Duration) {
	gatewayAttempts.WithLabelValues(norm(method), statusClass(status)).Inc()
	gatewayDuration.WithLabelValues(norm(method)).Observe(d.Seconds())
}

func IncRetry(reason string) {
	gatewayRetries.WithLabelValues(norm(reason)).Inc()
}

func IncRequest(method, outcome string) {
	gatewayRequests.WithLabelValues(norm(method), norm(outcome)).Inc()
}
