// Package metrics exposes Prometheus instrumentation for the retrieval
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	QueriesTotal         *prometheus.CounterVec
	ClaimsFiltered       *prometheus.CounterVec
	CollaboratorFailures *prometheus.CounterVec
	QueryDuration        prometheus.Histogram
}

// New registers the engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimscope_queries_total",
			Help: "Retrieval queries by outcome (answered, empty, error).",
		}, []string{"outcome"}),

		ClaimsFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimscope_claims_filtered_total",
			Help: "Claims removed by the gatekeeper, by filter stage.",
		}, []string{"stage"}),

		CollaboratorFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimscope_collaborator_failures_total",
			Help: "Failures of external collaborators (graph, vector, llm).",
		}, []string{"collaborator"}),

		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimscope_query_duration_seconds",
			Help:    "End-to-end retrieval query latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// NewDefault registers on the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
