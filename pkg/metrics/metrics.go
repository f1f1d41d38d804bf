// Package metrics exposes Prometheus collectors for the command queue and the
// request poller. A nil *Collector is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "signature_processor"

// Command outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomePanicked  = "panicked"
	OutcomeTimedOut  = "timed_out"
)

// Collector groups the queue and poller metrics.
type Collector struct {
	Enqueued     prometheus.Counter
	Deduplicated prometheus.Counter
	Completed    *prometheus.CounterVec
	Duration     prometheus.Histogram
	Pending      prometheus.Gauge
	Active       prometheus.Gauge
	PollCycles   *prometheus.CounterVec
	PollRequests *prometheus.CounterVec
	DeadLettered prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg skips registration.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "enqueued_total",
			Help:      "Commands accepted into the queue.",
		}),
		Deduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "deduplicated_total",
			Help:      "Enqueue calls dropped because the identity was pending or executing.",
		}),
		Completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "completed_total",
			Help:      "Commands that finished executing, by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "command_duration_seconds",
			Help:      "Time spent in a command's Execute.",
			Buckets:   prometheus.DefBuckets,
		}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "pending",
			Help:      "Commands waiting for admission.",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "active",
			Help:      "Commands currently executing.",
		}),
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "cycles_total",
			Help:      "Poll cycles run, by result.",
		}, []string{"result"}),
		PollRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "requests_total",
			Help:      "Pending requests seen by the poller, by action.",
		}, []string{"action"}),
		DeadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deadletter",
			Name:      "published_total",
			Help:      "Requests moved to the dead-letter queue.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.Enqueued,
			c.Deduplicated,
			c.Completed,
			c.Duration,
			c.Pending,
			c.Active,
			c.PollCycles,
			c.PollRequests,
			c.DeadLettered,
		)
	}
	return c
}

func (c *Collector) CommandEnqueued() {
	if c == nil {
		return
	}
	c.Enqueued.Inc()
}

func (c *Collector) CommandDeduplicated() {
	if c == nil {
		return
	}
	c.Deduplicated.Inc()
}

// CommandCompleted records the outcome and duration of one Execute call.
func (c *Collector) CommandCompleted(outcome string, seconds float64) {
	if c == nil {
		return
	}
	c.Completed.WithLabelValues(outcome).Inc()
	c.Duration.Observe(seconds)
}

// QueueDepth sets the pending and active gauges.
func (c *Collector) QueueDepth(pending, active int) {
	if c == nil {
		return
	}
	c.Pending.Set(float64(pending))
	c.Active.Set(float64(active))
}

// PollCycle records one poller run. result is "ok" or "error".
func (c *Collector) PollCycle(result string) {
	if c == nil {
		return
	}
	c.PollCycles.WithLabelValues(result).Inc()
}

// PollRequest records what the poller did with one pending request.
func (c *Collector) PollRequest(action string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.PollRequests.WithLabelValues(action).Add(float64(n))
}

func (c *Collector) RequestDeadLettered() {
	if c == nil {
		return
	}
	c.DeadLettered.Inc()
}
