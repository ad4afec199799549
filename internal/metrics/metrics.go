// Package metrics holds the Prometheus collectors the service exports on
// /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scheduler"

// OutcomeAccepted labels validations that passed every rule.
const OutcomeAccepted = "ACCEPTED"

type Metrics struct {
	registry *prometheus.Registry

	RPCs         *prometheus.CounterVec
	RPCDuration  *prometheus.HistogramVec
	Validations  *prometheus.CounterVec
	Saves        *prometheus.CounterVec
	Deletes      prometheus.Counter
	WindowSize   prometheus.Histogram
	Reminders    prometheus.Counter
	ReminderRuns *prometheus.CounterVec
}

// New registers every collector on a private registry. Runtime collectors
// are added when withRuntime is set.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		)
	}

	m := &Metrics{
		registry: reg,
		RPCs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "rpc", Name: "requests_total",
			Help: "RPCs handled, by method and status code.",
		}, []string{"method", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "rpc", Name: "duration_seconds",
			Help:    "RPC latency by method.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method"}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "appointments", Name: "validations_total",
			Help: "Appointment validations by outcome (ACCEPTED or the rejection reason).",
		}, []string{"outcome"}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "appointments", Name: "saves_total",
			Help: "Appointments written, by kind (create or update).",
		}, []string{"kind"}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "appointments", Name: "deletes_total",
			Help: "Appointments deleted.",
		}),
		WindowSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "appointments", Name: "window_rows",
			Help:    "Appointments returned for a calendar window.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		}),
		Reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reminder", Name: "sent_total",
			Help: "Upcoming-appointment reminders emitted.",
		}),
		ReminderRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reminder", Name: "runs_total",
			Help: "Reminder scans by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.RPCs, m.RPCDuration, m.Validations, m.Saves, m.Deletes, m.WindowSize, m.Reminders, m.ReminderRuns)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.RPCs.WithLabelValues(method, code).Inc()
	m.RPCDuration.WithLabelValues(method).Observe(d.Seconds())
}
