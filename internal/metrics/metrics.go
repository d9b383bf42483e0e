// Package metrics exposes scheduling activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prioq/internal/sched"
)

// Collector records scheduler events on its own registry. It implements
// sched.Observer and is safe for concurrent use.
type Collector struct {
	reg *prometheus.Registry

	tasksEnqueued  prometheus.Counter
	tasksCompleted prometheus.Counter
	deadlineMissed prometheus.Counter
	runs           prometheus.Counter
	waitTime       prometheus.Histogram
	executionTime  prometheus.Histogram
	throughput     prometheus.Gauge
}

// simulated time units, not seconds
var timeBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		reg: reg,
		tasksEnqueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: "prioq",
			Name:      "tasks_enqueued_total",
			Help:      "Total tasks inserted into a scheduling queue.",
		}),
		tasksCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "prioq",
			Name:      "tasks_completed_total",
			Help:      "Total tasks run to completion.",
		}),
		deadlineMissed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "prioq",
			Name:      "deadline_missed_total",
			Help:      "Total tasks that completed after their deadline.",
		}),
		runs: f.NewCounter(prometheus.CounterOpts{
			Namespace: "prioq",
			Name:      "runs_total",
			Help:      "Total schedule runs summarized.",
		}),
		waitTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "prioq",
			Name:      "task_wait_time",
			Help:      "Simulated time between arrival and start.",
			Buckets:   timeBuckets,
		}),
		executionTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "prioq",
			Name:      "task_execution_time",
			Help:      "Simulated time the executor spent per task.",
			Buckets:   timeBuckets,
		}),
		throughput: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "prioq",
			Name:      "last_run_throughput",
			Help:      "Tasks per simulated time unit of the most recent run.",
		}),
	}
}

// Observe implements sched.Observer.
func (c *Collector) Observe(ev sched.Event) {
	switch ev.Kind {
	case sched.EventEnqueue:
		c.tasksEnqueued.Inc()
	case sched.EventComplete:
		c.tasksCompleted.Inc()
	case sched.EventDeadlineMiss:
		c.deadlineMissed.Inc()
	}
}

// ObserveRun records per-task timings and run totals.
func (c *Collector) ObserveRun(results []sched.Result, st sched.Statistics) {
	for _, r := range results {
		c.waitTime.Observe(r.WaitTime)
		c.executionTime.Observe(r.CompletionTime - r.StartTime)
	}
	c.runs.Inc()
	c.throughput.Set(st.Throughput)
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the collected metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}
