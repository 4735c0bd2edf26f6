// Package prometheus exports lifecycle activity as Prometheus metrics.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements the lifecycle stats interface on top of a
// Prometheus registry.
type Collector struct {
	eventsPosted  *prometheus.CounterVec
	eventsDropped *prometheus.CounterVec
	stateChanges  *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	faults        *prometheus.CounterVec
	shutdownTime  prometheus.Histogram
}

// NewCollector creates a Collector registered with r. Passing nil selects
// the default registerer.
func NewCollector(r prometheus.Registerer) *Collector {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	f := promauto.With(r)
	return &Collector{
		eventsPosted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mainstay_termination_events_total",
			Help: "The total number of termination events admitted to the stream.",
		},
			[]string{"kind", "source"},
		),
		eventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mainstay_termination_events_dropped_total",
			Help: "The total number of termination events dropped because the stream buffer was full.",
		},
			[]string{"kind", "source"},
		),
		stateChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mainstay_lifecycle_state_changes_total",
			Help: "The total number of lifecycle state transitions, by resulting state.",
		},
			[]string{"state"},
		),
		runsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mainstay_runs_completed_total",
			Help: "The total number of run bodies that returned, by exit code and guard mode.",
		},
			[]string{"code", "guarded"},
		),
		faults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mainstay_faults_captured_total",
			Help: "The total number of faults captured by the crash guard.",
		},
			[]string{"context"},
		),
		shutdownTime: f.NewHistogram(prometheus.HistogramOpts{
			Name: "mainstay_shutdown_duration_seconds",
			Help: "The latency distribution of completed shutdown sequences.",
		}),
	}
}

// EventPosted implements the lifecycle stats interface.
func (c *Collector) EventPosted(kind, source string) {
	c.eventsPosted.WithLabelValues(kind, source).Inc()
}

// EventDropped implements the lifecycle stats interface.
func (c *Collector) EventDropped(kind, source string) {
	c.eventsDropped.WithLabelValues(kind, source).Inc()
}

// StateChanged implements the lifecycle stats interface.
func (c *Collector) StateChanged(state string) {
	c.stateChanges.WithLabelValues(state).Inc()
}

// RunCompleted implements the lifecycle stats interface.
func (c *Collector) RunCompleted(code int, guarded bool) {
	c.runsCompleted.WithLabelValues(strconv.Itoa(code), strconv.FormatBool(guarded)).Inc()
}

// FaultCaptured implements the lifecycle stats interface.
func (c *Collector) FaultCaptured(name string) {
	c.faults.WithLabelValues(name).Inc()
}

// ShutdownCompleted implements the lifecycle stats interface.
func (c *Collector) ShutdownCompleted(d time.Duration) {
	c.shutdownTime.Observe(d.Seconds())
}
