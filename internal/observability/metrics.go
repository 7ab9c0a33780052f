// Package observability exposes Prometheus metrics for arrangement runs and RPCs.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// Run outcomes.
const (
	OutcomeComplete = "complete"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	Scores       prometheus.Histogram
	Conflicts    *prometheus.CounterVec
	GuestMoves   *prometheus.CounterVec
	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "arrangement_runs_total",
				Help:      "Total number of arrangement runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "arrangement_duration_seconds",
				Help:      "Arrangement run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		Scores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "arrangement_score",
				Help:      "Score of completed arrangement runs",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		Conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "arrangement_conflicts_total",
				Help:      "Total number of conflicts reported by arrangement runs",
			},
			[]string{"kind", "severity"},
		),
		GuestMoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guest_moves_total",
				Help:      "Total number of guest moves written to the directories",
			},
			[]string{"status"},
		),
		RPCRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_requests_total",
				Help:      "Total number of RPC requests",
			},
			[]string{"procedure", "code"},
		),
		RPCDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_duration_seconds",
				Help:      "RPC duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
	}

	registry.MustRegister(
		c.Runs,
		c.RunDuration,
		c.Scores,
		c.Conflicts,
		c.GuestMoves,
		c.RPCRequests,
		c.RPCDurations,
	)
	return c
}

// RunFinished records a run that reached a terminal state.
func (c *Collector) RunFinished(result *models.Result, d time.Duration) {
	if c == nil || result == nil {
		return
	}
	outcome := OutcomeFailed
	if result.Success {
		outcome = OutcomeComplete
		c.Scores.Observe(result.Score)
	}
	c.Runs.WithLabelValues(outcome).Inc()
	c.RunDuration.Observe(d.Seconds())
	for _, conflict := range result.Conflicts {
		c.Conflicts.WithLabelValues(string(conflict.Kind), string(conflict.Severity)).Inc()
	}
}

// RunRejected records a run refused because another one held the event.
func (c *Collector) RunRejected() {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(OutcomeRejected).Inc()
}

// GuestMove records one synchronizer write.
func (c *Collector) GuestMove(ok bool) {
	if c == nil {
		return
	}
	status := "applied"
	if !ok {
		status = "failed"
	}
	c.GuestMoves.WithLabelValues(status).Inc()
}

// RPC records one RPC call.
func (c *Collector) RPC(procedure, code string, d time.Duration) {
	if c == nil {
		return
	}
	c.RPCRequests.WithLabelValues(procedure, code).Inc()
	c.RPCDurations.WithLabelValues(procedure).Observe(d.Seconds())
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
