// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bridge collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	acquisitions *prometheus.CounterVec
	readRanges   *prometheus.CounterVec
	writes       *prometheus.CounterVec
	publications prometheus.Counter
	readBurst    prometheus.Histogram
	pending      prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isystem_bus_acquisitions_total",
			Help: "Bus mastership acquisitions by outcome",
		}, []string{"outcome"}),

		readRanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isystem_read_ranges_total",
			Help: "Register range reads by result",
		}, []string{"result"}),

		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isystem_writes_total",
			Help: "Register write requests by result",
		}, []string{"result"}),

		publications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isystem_publications_total",
			Help: "Values published to the broker",
		}),

		readBurst: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "isystem_read_burst_seconds",
			Help:    "Duration of one full read burst",
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 4, 4.6, 6, 10},
		}),

		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isystem_pending_writes",
			Help: "Write requests waiting in the ingress queue",
		}),
	}

	m.registry.MustRegister(
		m.acquisitions,
		m.readRanges,
		m.writes,
		m.publications,
		m.readBurst,
		m.pending,
	)
	return m
}

// Registry exposes the underlying registry (for the HTTP handler and tests).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ---- recorders ----

func (m *Metrics) BusAcquisition(outcome string) {
	if m == nil {
		return
	}
	m.acquisitions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ReadRange(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.readRanges.WithLabelValues(result).Inc()
}

// Write results: applied, dropped, failed.
func (m *Metrics) Write(result string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(result).Inc()
}

func (m *Metrics) Publication() {
	if m == nil {
		return
	}
	m.publications.Inc()
}

func (m *Metrics) ReadBurst(d time.Duration) {
	if m == nil {
		return
	}
	m.readBurst.Observe(d.Seconds())
}

func (m *Metrics) PendingWrites(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
