// Package metrics defines and registers the custom Prometheus metrics for the
// storefront. It is the single source of truth for metric names, labels and
// help strings. Per-request HTTP metrics come from echoprometheus (see
// middleware.Metrics) under the same "storefront" prefix.
//
// Metrics are registered with the default registry through promauto when the
// package is loaded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionBroadcastsTotal counts storage change broadcasts.
// Label:
//   - reason: "save", "clear", "refresh" or "profile"
var SessionBroadcastsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_broadcasts_total",
		Help:      "Total number of session storage change broadcasts, by reason.",
	},
	[]string{"reason"},
)

// SessionRefreshesTotal counts token refresh attempts made by the session guard.
// Label:
//   - result: "ok" or "failed"
var SessionRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refreshes_total",
		Help:      "Total number of token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Fetch metrics ─────────────────────────────────────────────────────────────

// FetchesTotal counts collection fetches against the backend.
// Labels:
//   - endpoint: "public_catalog", "my_listings" or "my_orders"
//   - outcome: "ok", "empty_shape", "expired" or "error"
var FetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetches_total",
		Help:      "Total number of collection fetches, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// FetchDuration measures the round trip of a collection fetch.
var FetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of collection fetches against the backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// StaleLoadsDiscardedTotal counts fetch results dropped because a newer load
// had already started, or the view was closed.
// Labels:
//   - view: the view name (e.g. "catalog", "my_listings")
//   - outcome: "stale" or "cancelled"
var StaleLoadsDiscardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loads_discarded_total",
		Help:      "Total number of view loads whose results were discarded.",
	},
	[]string{"view", "outcome"},
)

// ── Listing actions ───────────────────────────────────────────────────────────

// BulkActionsTotal counts per-item results of bulk listing actions.
// Labels:
//   - action: "publish", "unpublish" or "delete"
//   - result: "ok" or "error"
var BulkActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_actions_total",
		Help:      "Total number of listing actions executed in bulk, by action and result.",
	},
	[]string{"action", "result"},
)

// BulkQueueDepth tracks pending actions in each bulk worker channel.
var BulkQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bulk_queue_depth",
		Help:      "Current number of listing actions pending in each bulk worker channel.",
	},
	[]string{"worker_id"},
)

// OrdersPlacedTotal counts buy-now checkouts.
// Label:
//   - result: "ok", "rejected" or "error"
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of buy-now checkouts, by result.",
	},
	[]string{"result"},
)
