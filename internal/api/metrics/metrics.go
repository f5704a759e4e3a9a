// Package metrics defines and registers all custom Prometheus metrics for the
// scan engine. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scanengine"

// ── Scan metrics ──────────────────────────────────────────────────────────────

// ScansSubmittedTotal counts newly submitted scans.
// Label:
//   - owner: "user" (authenticated) or "session" (anonymous)
var ScansSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_submitted_total",
		Help:      "Total number of scans submitted, by owner kind.",
	},
	[]string{"owner"},
)

// ScansCompletedTotal counts scans that reached a terminal state.
// Label:
//   - status: "completed" or "failed"
var ScansCompletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_completed_total",
		Help:      "Total number of scans that reached a terminal state, by outcome.",
	},
	[]string{"status"},
)

// ScanDuration measures end-to-end pipeline duration for terminal scans.
// Label:
//   - status: "completed" or "failed"
var ScanDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "End-to-end scan pipeline duration from pickup to terminal state.",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	},
	[]string{"status"},
)

// ── Capture metrics ───────────────────────────────────────────────────────────

// CaptureAttemptsTotal counts individual capture backend calls.
// Label:
//   - result: "success", "transient_failure" or "rejected"
var CaptureAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capture_attempts_total",
		Help:      "Total number of capture backend attempts, by result.",
	},
	[]string{"result"},
)

// ScreenshotCacheTotal counts screenshot cache decisions.
// Label:
//   - result: "hit" or "miss"
var ScreenshotCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "screenshot_cache_total",
		Help:      "Total number of screenshot cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Hub metrics ───────────────────────────────────────────────────────────────

// EventsEmittedTotal counts broadcast events by kind.
var EventsEmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_emitted_total",
		Help:      "Total number of progress events emitted to broadcast rooms.",
	},
	[]string{"kind"},
)

// RoomSubscribers tracks the current number of subscribers across all rooms.
// A per-scan label would be unbounded cardinality, so only the global count
// is tracked.
var RoomSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "room_subscribers",
		Help:      "Current number of subscribers across all broadcast rooms.",
	},
)
