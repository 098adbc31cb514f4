// Package metrics exposes Prometheus counters for an event ring's
// writer and reader activity. It is deliberately separate from
// package eventring: the core ring stays free of any metrics
// dependency on its hot path, and a hosting binary that wants
// observability wires a Collector around the calls it already makes
// (see cmd/eventringctl).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label values for the dropped-event counter, matching
// eventring.RecordErrorKind's names.
const (
	LabelOverflow4GB    = "overflow_4gb"
	LabelOverflowExpire = "overflow_expire"
	LabelMissingEvent   = "missing_event"
)

// Collector is a Prometheus collector for a single event ring.
// Construct one with NewCollector per ring a process records into or
// tails; a process that both records and tails the same ring shares
// one Collector between its Recorder and Iterator call sites.
type Collector struct {
	recordedTotal  prometheus.Counter
	droppedTotal   *prometheus.CounterVec
	windowAdvances prometheus.Counter
	gapsTotal      prometheus.Counter
	gapEventsTotal prometheus.Counter

	registered bool
}

// NewCollector creates a Collector for ringName and registers it with
// registry. If registry is nil the Collector is still usable but its
// series are never exported, which is convenient in tests that only
// want to assert on counter values directly.
func NewCollector(registry prometheus.Registerer, ringName string) *Collector {
	c := &Collector{
		recordedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventring",
			Subsystem:   "recorder",
			Name:        "events_recorded_total",
			Help:        "Total number of events successfully published to the ring.",
			ConstLabels: prometheus.Labels{"ring": ringName},
		}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "eventring",
			Subsystem:   "recorder",
			Name:        "events_dropped_total",
			Help:        "Total number of events replaced by a RECORD_ERROR event, by reason.",
			ConstLabels: prometheus.Labels{"ring": ringName},
		}, []string{"reason"}),
		windowAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventring",
			Subsystem:   "recorder",
			Name:        "window_advances_total",
			Help:        "Total number of times buffer_window_start was advanced.",
			ConstLabels: prometheus.Labels{"ring": ringName},
		}),
		gapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventring",
			Subsystem:   "reader",
			Name:        "gaps_total",
			Help:        "Total number of times a reader's Next() observed the writer had lapped it.",
			ConstLabels: prometheus.Labels{"ring": ringName},
		}),
		gapEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventring",
			Subsystem:   "reader",
			Name:        "gap_events_total",
			Help:        "Total number of events lost to gaps, summed across all gaps observed.",
			ConstLabels: prometheus.Labels{"ring": ringName},
		}),
	}

	if registry != nil {
		registry.MustRegister(
			c.recordedTotal,
			c.droppedTotal,
			c.windowAdvances,
			c.gapsTotal,
			c.gapEventsTotal,
		)
		c.registered = true
	}

	return c
}

// ObserveRecorded records a successfully published event.
func (c *Collector) ObserveRecorded() {
	if c == nil {
		return
	}
	c.recordedTotal.Inc()
}

// ObserveDropped records an event that was replaced by a RECORD_ERROR
// event, labeled with the reason it was dropped.
func (c *Collector) ObserveDropped(reason string) {
	if c == nil {
		return
	}
	c.droppedTotal.WithLabelValues(reason).Inc()
}

// ObserveWindowAdvance records a buffer_window_start advancement.
func (c *Collector) ObserveWindowAdvance() {
	if c == nil {
		return
	}
	c.windowAdvances.Inc()
}

// ObserveGap records a reader-observed gap of skipped events.
func (c *Collector) ObserveGap(skipped uint64) {
	if c == nil || skipped == 0 {
		return
	}
	c.gapsTotal.Inc()
	c.gapEventsTotal.Add(float64(skipped))
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	if c == nil {
		return
	}
	ch <- c.recordedTotal.Desc()
	c.droppedTotal.Describe(ch)
	ch <- c.windowAdvances.Desc()
	ch <- c.gapsTotal.Desc()
	ch <- c.gapEventsTotal.Desc()
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil {
		return
	}
	ch <- c.recordedTotal
	c.droppedTotal.Collect(ch)
	ch <- c.windowAdvances
	ch <- c.gapsTotal
	ch <- c.gapEventsTotal
}
