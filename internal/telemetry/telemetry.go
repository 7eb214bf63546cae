package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	GuardDecisions  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SyncRuns        *prometheus.CounterVec
	SyncedRows      prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collabhub",
			Name:      "guard_decisions_total",
			Help:      "Session guard decisions on protected paths by outcome and cause.",
		}, []string{"outcome", "cause"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "collabhub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collabhub",
			Name:      "sync_runs_total",
			Help:      "Participation resync runs by result.",
		}, []string{"result"}),
		SyncedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collabhub",
			Name:      "synced_rows_total",
			Help:      "Participation rows upserted by resync.",
		}),
	}
	reg.MustRegister(
		m.GuardDecisions,
		m.RequestDuration,
		m.SyncRuns,
		m.SyncedRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
