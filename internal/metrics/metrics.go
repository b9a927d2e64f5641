// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "settleup"

// Metrics owns a registry so tests and multiple servers never collide on the
// global default registerer.
type Metrics struct {
	registry *prometheus.Registry

	RPCRequests          *prometheus.CounterVec
	RPCDuration          *prometheus.HistogramVec
	SettlementsSuggested prometheus.Counter
	ExpensesAdded        prometheus.Counter
	ExpensesSettled      prometheus.Counter
	ResidueErrors        prometheus.Counter
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPC requests by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		SettlementsSuggested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_suggested_total",
			Help:      "Settlement transfers returned by balance requests.",
		}),
		ExpensesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_added_total",
			Help:      "Expenses recorded.",
		}),
		ExpensesSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_settled_total",
			Help:      "Settle requests that marked an expense settled.",
		}),
		ResidueErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_residue_errors_total",
			Help:      "Balance requests rejected by the residual policy.",
		}),
	}

	m.registry.MustRegister(
		m.RPCRequests,
		m.RPCDuration,
		m.SettlementsSuggested,
		m.ExpensesAdded,
		m.ExpensesSettled,
		m.ResidueErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
