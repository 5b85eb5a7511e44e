// Package metrics holds the Prometheus collectors shared by the server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	purchases         *prometheus.CounterVec
	refunds           *prometheus.CounterVec
	registrarRequests *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		purchases: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaincli_purchases_total",
			Help: "Domain purchases by final outcome.",
		}, []string{"outcome"}),
		refunds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaincli_refunds_total",
			Help: "Compensating refunds by result.",
		}, []string{"result"}),
		registrarRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaincli_registrar_requests_total",
			Help: "Registrar API calls by path and outcome.",
		}, []string{"path", "outcome"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "domaincli_rpc_duration_seconds",
			Help:    "RPC handling latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncPurchase(outcome string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRefund(result string) {
	if m == nil {
		return
	}
	m.refunds.WithLabelValues(result).Inc()
}

func (m *Metrics) IncRegistrarRequest(path, outcome string) {
	if m == nil {
		return
	}
	m.registrarRequests.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) ObserveRPC(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
