// Package metrics exposes prometheus counters for guest lookups and the RSVP board.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup results.
const (
	LookupFound   = "found"
	LookupMissing = "missing"
	LookupFailed  = "failed"
	LookupCached  = "cached"
)

// Submission results.
const (
	SubmissionAccepted   = "accepted"
	SubmissionIncomplete = "incomplete"
	SubmissionFailed     = "failed"
)

// Metrics holds the collectors of one process. A nil *Metrics records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	lookups     *prometheus.CounterVec
	submissions *prometheus.CounterVec
	loads       *prometheus.CounterVec
	boardSize   prometheus.Gauge
}

// New registers the invitation collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitation",
			Name:      "guest_lookups_total",
			Help:      "Guest lookups by result.",
		}, []string{"result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitation",
			Name:      "rsvp_submissions_total",
			Help:      "RSVP submissions by result.",
		}, []string{"result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitation",
			Name:      "rsvp_loads_total",
			Help:      "Full RSVP board loads by result.",
		}, []string{"result"}),
		boardSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "invitation",
			Name:      "rsvp_board_size",
			Help:      "Submissions currently held in memory.",
		}),
	}
	m.registry.MustRegister(
		m.lookups,
		m.submissions,
		m.loads,
		m.boardSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLoad(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.loads.WithLabelValues(result).Inc()
}

func (m *Metrics) SetBoardSize(n int) {
	if m == nil {
		return
	}
	m.boardSize.Set(float64(n))
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
