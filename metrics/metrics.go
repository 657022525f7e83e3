// Package metrics exports breaker events to Prometheus.
//
// The exporter subscribes to a breaker's event stream and translates
// each event into counter, gauge, and histogram updates. It is an
// independent subscriber: the core publishes events without knowing
// the exporter exists.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bjaus/fuse"
)

// Exporter translates breaker events into Prometheus metrics. One
// Exporter serves any number of attached breakers, partitioned by the
// breaker label.
type Exporter struct {
	events  *prometheus.CounterVec
	state   *prometheus.GaugeVec
	latency *prometheus.HistogramVec
}

// New creates an Exporter with its collectors registered on reg.
func New(reg prometheus.Registerer) *Exporter {
	factory := promauto.With(reg)
	return &Exporter{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuse_events_total",
				Help: "Total breaker lifecycle events by type",
			},
			[]string{"breaker", "event"},
		),
		state: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fuse_breaker_state",
				Help: "Current circuit state (0 closed, 1 open, 2 half-open)",
			},
			[]string{"breaker"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fuse_call_duration_seconds",
				Help:    "Latency of successful calls",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"breaker"},
		),
	}
}

// Attach subscribes the exporter to b's events. The returned function
// detaches it.
func (e *Exporter) Attach(b *fuse.Breaker) (detach func()) {
	e.state.WithLabelValues(b.Name()).Set(float64(b.State()))

	return b.Subscribe(func(ev fuse.Event) {
		e.events.WithLabelValues(ev.Name, ev.Type.String()).Inc()

		switch ev.Type {
		case fuse.EventSuccess:
			e.latency.WithLabelValues(ev.Name).Observe(ev.Latency.Seconds())
		case fuse.EventOpen:
			e.state.WithLabelValues(ev.Name).Set(float64(fuse.Open))
		case fuse.EventClose:
			e.state.WithLabelValues(ev.Name).Set(float64(fuse.Closed))
		case fuse.EventHalfOpen:
			e.state.WithLabelValues(ev.Name).Set(float64(fuse.HalfOpen))
		}
	})
}
