// Package metrics counts what an export run did and writes the counters in
// the Prometheus text format, for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joshuapare/regexport/pkg/regexport"
)

// Collector implements regexport.Observer on its own registry, so a run
// never touches the global default registry.
type Collector struct {
	registry *prometheus.Registry

	records  prometheus.Counter
	paths    *prometheus.CounterVec
	filtered prometheus.Counter
	lastRun  prometheus.Gauge
}

var _ regexport.Observer = (*Collector)(nil)

// New creates a Collector with all run metrics registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		records: factory.NewCounter(prometheus.CounterOpts{
			Name: "regexport_records_total",
			Help: "Records emitted by traversal",
		}),
		paths: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regexport_paths_total",
			Help: "Input paths by outcome",
		}, []string{"result"}),
		filtered: factory.NewCounter(prometheus.CounterOpts{
			Name: "regexport_binary_filtered_total",
			Help: "Binary records dropped before writing",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "regexport_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	// Pre-create every outcome so all three series appear even at zero.
	for _, r := range []regexport.PathResult{regexport.PathOK, regexport.PathSkipped, regexport.PathFailed} {
		c.paths.WithLabelValues(string(r))
	}
	return c
}

// PathDone implements regexport.Observer.
func (c *Collector) PathDone(result regexport.PathResult, records int) {
	c.paths.WithLabelValues(string(result)).Inc()
	c.records.Add(float64(records))
}

// BinaryFiltered implements regexport.Observer.
func (c *Collector) BinaryFiltered(n int) {
	c.filtered.Add(float64(n))
}

// Finish stamps the run completion time.
func (c *Collector) Finish(now time.Time) {
	c.lastRun.Set(float64(now.Unix()))
}

// Registry exposes the private registry, e.g. for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// WriteTextfile writes every metric to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
