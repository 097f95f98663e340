// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. A single instance is
// created at startup and handed to the services that record into it.
type Metrics struct {
	// ExpenseMutations counts expense create/update/delete operations,
	// labeled by operation and scope kind (group or expense).
	ExpenseMutations *prometheus.CounterVec

	// SettlementRecomputeDuration observes how long a full
	// read-balances/solve/replace cycle takes, labeled by scope kind.
	SettlementRecomputeDuration *prometheus.HistogramVec

	// SettlementsEmitted observes how many settlements a recompute produced.
	SettlementsEmitted prometheus.Histogram

	// HTTPRequests counts requests by method, route and status.
	HTTPRequests *prometheus.CounterVec
}

// New registers the service collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ExpenseMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendsplit",
			Name:      "expense_mutations_total",
			Help:      "Expense create/update/delete operations.",
		}, []string{"operation", "scope"}),

		SettlementRecomputeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spendsplit",
			Name:      "settlement_recompute_duration_seconds",
			Help:      "Duration of a settlement recompute cycle.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scope"}),

		SettlementsEmitted: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spendsplit",
			Name:      "settlements_emitted",
			Help:      "Number of settlements produced per recompute.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendsplit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}
