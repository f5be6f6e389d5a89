package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "downsort"

// Collectors holds the Prometheus instruments for the organizer. They live on
// a private registry so tests and multiple instances never collide.
type Collectors struct {
	registry     *prometheus.Registry
	filesMoved   *prometheus.CounterVec
	moveFailures *prometheus.CounterVec
	events       *prometheus.CounterVec
	scanDuration prometheus.Histogram
}

// NewCollectors creates and registers every collector. Process and Go runtime
// collectors are included.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		filesMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_moved_total",
			Help:      "Files relocated into a category folder.",
		}, []string{"category"}),
		moveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "move_failures_total",
			Help:      "Moves that did not happen, by error kind.",
		}, []string{"kind"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Filesystem events received from the watcher.",
		}, []string{"kind"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of full sweeps of the watched root.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	c.registry.MustRegister(
		c.filesMoved,
		c.moveFailures,
		c.events,
		c.scanDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the registry backing these collectors.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collectors) FileMoved(category string) {
	c.filesMoved.WithLabelValues(category).Inc()
}

func (c *Collectors) MoveFailed(kind string) {
	c.moveFailures.WithLabelValues(kind).Inc()
}

func (c *Collectors) EventReceived(kind string) {
	c.events.WithLabelValues(kind).Inc()
}

func (c *Collectors) ScanFinished(d time.Duration) {
	c.scanDuration.Observe(d.Seconds())
}
