// Package metrics expone los contadores operativos en /metrics.
// Todos los métodos aceptan receptor nil para que los services funcionen sin métricas.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sanctuary"

type Metrics struct {
	registry *prometheus.Registry

	auditWrites        *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	capacityRejections prometheus.Counter
	httpDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		auditWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_writes_total",
			Help:      "Activity log writes by table and result.",
		}, []string{"table", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_transitions_total",
			Help:      "Adoption application status transitions by target status and trigger.",
		}, []string{"to", "trigger"}),
		capacityRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "habitat_capacity_rejections_total",
			Help:      "Admissions rejected because the habitat was full.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.auditWrites,
		m.transitions,
		m.capacityRejections,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry permite a los tests leer los valores con testutil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) AuditWritten(table string) {
	if m == nil {
		return
	}
	m.auditWrites.WithLabelValues(table, "ok").Inc()
}

func (m *Metrics) AuditFailed(table string) {
	if m == nil {
		return
	}
	m.auditWrites.WithLabelValues(table, "error").Inc()
}

// ApplicationTransition: trigger es "staff" o "auto" (rechazo por aprobación de otra solicitud).
func (m *Metrics) ApplicationTransition(to, trigger string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to, trigger).Inc()
}

func (m *Metrics) CapacityRejected() {
	if m == nil {
		return
	}
	m.capacityRejections.Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Counters de test: lectura directa sin pasar por /metrics.

func (m *Metrics) AuditWrites(table, result string) prometheus.Counter {
	return m.auditWrites.WithLabelValues(table, result)
}

func (m *Metrics) Transitions(to, trigger string) prometheus.Counter {
	return m.transitions.WithLabelValues(to, trigger)
}

func (m *Metrics) CapacityRejections() prometheus.Counter {
	return m.capacityRejections
}
