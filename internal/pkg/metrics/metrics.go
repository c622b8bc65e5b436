// Package metrics defines and registers all custom Prometheus metrics for the
// film catalog API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation; HTTP request metrics are handled separately by the
// echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "films"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts signup and login attempts.
// Labels:
//   - operation: "signup" or "login"
//   - result: "success", "duplicate_email", "invalid_credentials", "invalid_input" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of signup and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// HashQueueDepth tracks password hashing jobs waiting for a pool worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs waiting for a worker.",
	},
)

// ── Sync metrics ──────────────────────────────────────────────────────────────

// SyncRunsTotal counts reconciliation runs.
// Label:
//   - result: "success", "upstream_unavailable", "in_progress" or "error"
var SyncRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_runs_total",
		Help:      "Total number of film sync runs, by outcome.",
	},
	[]string{"result"},
)

// SyncFilmsTotal counts films touched by successful runs.
// Label:
//   - action: "added", "updated" or "unchanged"
var SyncFilmsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_films_total",
		Help:      "Total number of upstream films reconciled, by action.",
	},
	[]string{"action"},
)

// SyncDuration measures a full run, fetch included.
var SyncDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of film sync runs from lock acquisition to commit.",
		Buckets:   prometheus.DefBuckets,
	},
)
