package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlink_api_requests_total",
			Help: "Total number of requests issued to the chat backend.",
		},
		[]string{"operation", "status"},
	)
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlink_api_request_duration_seconds",
			Help:    "Chat backend request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	pollCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlink_poll_cycles_total",
			Help: "Total number of poll cycles per resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)
	stateMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlink_state_mutations_total",
			Help: "Total number of state store mutations by operation.",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		apiRequestsTotal,
		apiRequestDuration,
		pollCyclesTotal,
		stateMutationsTotal,
	)
}

// ObserveAPIRequest records one backend request with its HTTP status
// ("error" when the request never produced a response).
func ObserveAPIRequest(operation, status string, seconds float64) {
	apiRequestsTotal.WithLabelValues(operation, status).Inc()
	apiRequestDuration.WithLabelValues(operation).Observe(seconds)
}

// ObservePollCycle records one completed poll cycle.
// outcome is "ok" or "error".
func ObservePollCycle(resource, outcome string) {
	pollCyclesTotal.WithLabelValues(resource, outcome).Inc()
}

// ObserveStateMutation records one store mutation.
func ObserveStateMutation(operation string) {
	stateMutationsTotal.WithLabelValues(operation).Inc()
}
